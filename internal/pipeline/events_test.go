package pipeline

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalEvent(t *testing.T, e Event) string {
	t.Helper()
	data, err := sonic.ConfigStd.Marshal(e)
	require.NoError(t, err)
	return string(data)
}

func TestEventWireShapes(t *testing.T) {
	assert.Contains(t, marshalEvent(t, progressEvent("render", "Fetching page", 15)),
		`"message":"Fetching page"`)

	start := marshalEvent(t, htmlStartEvent(3))
	assert.Contains(t, start, `"type":"html_start"`)
	assert.Contains(t, start, `"totalChunks":3`)

	chunk := marshalEvent(t, htmlChunkEvent("<p>x</p>", 0))
	assert.Contains(t, chunk, `"chunk":"<p>x</p>"`)
	assert.Contains(t, chunk, `"chunkIndex":0`)

	end := marshalEvent(t, htmlEndEvent(""))
	assert.Contains(t, end, `"type":"html_end"`)
	assert.Contains(t, end, `"title":""`)

	success := marshalEvent(t, successEvent(&Result{Slug: "s"}))
	assert.Contains(t, success, `"data":{`)
	assert.NotContains(t, success, `"payload"`)

	failure := marshalEvent(t, errorEvent("boom"))
	assert.Contains(t, failure, `"error":"boom"`)
	assert.NotContains(t, failure, `"message"`)
}

func TestEventOmitsChunkKeysOutsidePreview(t *testing.T) {
	success := marshalEvent(t, successEvent(&Result{Slug: "s"}))
	assert.NotContains(t, success, "chunkIndex")
	assert.NotContains(t, success, "totalChunks")
	assert.NotContains(t, success, "title")
}
