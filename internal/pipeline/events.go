package pipeline

import "github.com/GriffinCanCode/APIForge/backend/internal/extract"

// Event types streamed to the client while a generation runs.
const (
	EventProgress  = "progress"
	EventHTMLStart = "html_start"
	EventHTMLChunk = "html_chunk"
	EventHTMLEnd   = "html_end"
	EventSuccess   = "success"
	EventError     = "error"
)

// Event is one streamed pipeline update. Pointer fields distinguish
// "key absent" from a legitimate zero value: chunk index 0 and an
// empty page title must still appear on the wire.
type Event struct {
	Type        string  `json:"type"`
	Stage       string  `json:"stage,omitempty"`
	Message     string  `json:"message,omitempty"`
	Percent     int     `json:"percent,omitempty"`
	TotalChunks *int    `json:"totalChunks,omitempty"`
	Chunk       string  `json:"chunk,omitempty"`
	ChunkIndex  *int    `json:"chunkIndex,omitempty"`
	Title       *string `json:"title,omitempty"`
	Error       string  `json:"error,omitempty"`
	Data        *Result `json:"data,omitempty"`
}

// Result is the success payload: everything the client needs to use
// the generated endpoint immediately.
type Result struct {
	Slug        string         `json:"slug"`
	EndpointURL string         `json:"endpointUrl"`
	SampleData  extract.Record `json:"sampleData"`
	DownloadURL string         `json:"downloadUrl"`
	RefreshURL  string         `json:"refreshUrl"`
	Files       Files          `json:"files"`
}

// Files carries the generated artifact sources inline.
type Files struct {
	OpenAPI string `json:"openapi"`
	SDK     string `json:"sdk"`
	Postman string `json:"postman"`
}

// Emitter receives pipeline events in order.
type Emitter func(Event)

func progressEvent(stage, message string, percent int) Event {
	return Event{Type: EventProgress, Stage: stage, Message: message, Percent: percent}
}

func htmlStartEvent(totalChunks int) Event {
	return Event{Type: EventHTMLStart, TotalChunks: &totalChunks}
}

func htmlChunkEvent(chunk string, index int) Event {
	return Event{Type: EventHTMLChunk, Chunk: chunk, ChunkIndex: &index}
}

func htmlEndEvent(title string) Event {
	return Event{Type: EventHTMLEnd, Title: &title}
}

func successEvent(res *Result) Event {
	return Event{Type: EventSuccess, Percent: 100, Data: res}
}

func errorEvent(msg string) Event {
	return Event{Type: EventError, Error: msg}
}
