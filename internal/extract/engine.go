// Package extract evaluates named selector rules against rendered HTML
// and produces the extraction record that seeds schema inference and
// the slug-addressed cache.
//
// Evaluation is deterministic: matches are taken in document order, and
// a fixed (html, rules) pair always yields the same record. A malformed
// selector never aborts the run; the offending rule degrades to its
// empty form and every other rule still evaluates.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
)

// Engine evaluates selector rules against HTML documents.
type Engine struct {
	logger *logging.Logger
}

// NewEngine creates an extraction engine.
func NewEngine(logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{logger: logger}
}

// Extract evaluates every rule against the document and returns the
// named record. Zero matches and malformed selectors produce the rule's
// empty form; neither is an error for the run as a whole.
func (e *Engine) Extract(htmlStr string, rules []SelectorRule) Record {
	record := make(Record, len(rules))

	doc, docErr := LoadHTML(htmlStr)
	var node *html.Node
	var nodeErr error
	nodeParsed := false

	for _, rule := range rules {
		if rule.Engine == EngineXPath {
			// The xpath tree is only built when a rule needs it.
			if !nodeParsed {
				node, nodeErr = LoadHTMLNode(htmlStr)
				nodeParsed = true
			}
			if nodeErr != nil {
				e.logger.Warn("html parse failed, rule degraded to empty value",
					zap.String("rule", rule.Name), zap.Error(nodeErr))
				record[rule.Name] = rule.EmptyValue()
				continue
			}
			record[rule.Name] = e.evalXPath(node, rule)
			continue
		}

		if docErr != nil {
			e.logger.Warn("html parse failed, rule degraded to empty value",
				zap.String("rule", rule.Name), zap.Error(docErr))
			record[rule.Name] = rule.EmptyValue()
			continue
		}
		record[rule.Name] = e.evalCSS(doc, rule)
	}

	return record
}

// evalCSS evaluates one CSS rule. The selector is compiled up front so
// a syntax error is isolated to this rule.
func (e *Engine) evalCSS(doc *goquery.Document, rule SelectorRule) any {
	sel, err := cascadia.Compile(rule.Selector)
	if err != nil {
		e.logger.Warn("invalid css selector, rule degraded to empty value",
			zap.String("rule", rule.Name),
			zap.String("selector", rule.Selector),
			zap.Error(err))
		return rule.EmptyValue()
	}

	matches := doc.FindMatcher(sel)
	if matches.Length() == 0 {
		return rule.EmptyValue()
	}

	if !rule.Multiple {
		v := selectionValue(matches.First(), rule.Mode)
		if v == "" {
			return nil
		}
		return v
	}

	values := make([]string, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		if v := selectionValue(s, rule.Mode); v != "" {
			values = append(values, v)
		}
	})
	return values
}

// evalXPath evaluates one XPath rule with the same multiplicity and
// empty-value semantics as CSS rules.
func (e *Engine) evalXPath(root *html.Node, rule SelectorRule) any {
	expr, err := xpath.Compile(rule.Selector)
	if err != nil {
		e.logger.Warn("invalid xpath expression, rule degraded to empty value",
			zap.String("rule", rule.Name),
			zap.String("selector", rule.Selector),
			zap.Error(err))
		return rule.EmptyValue()
	}

	nodes := htmlquery.QuerySelectorAll(root, expr)
	if len(nodes) == 0 {
		return rule.EmptyValue()
	}

	if !rule.Multiple {
		v := nodeValue(nodes[0], rule.Mode)
		if v == "" {
			return nil
		}
		return v
	}

	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if v := nodeValue(n, rule.Mode); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func selectionValue(s *goquery.Selection, mode AttributeMode) string {
	if name, ok := mode.Attribute(); ok {
		return s.AttrOr(name, "")
	}
	if mode.IsHTML() {
		inner, err := s.Html()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(s.Text())
}

func nodeValue(n *html.Node, mode AttributeMode) string {
	if name, ok := mode.Attribute(); ok {
		return htmlquery.SelectAttr(n, name)
	}
	if mode.IsHTML() {
		return strings.TrimSpace(innerHTML(n))
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}
