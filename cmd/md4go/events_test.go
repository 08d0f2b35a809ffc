package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rgonek/md4go/options"
	"github.com/rgonek/md4go/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestParser(t *testing.T, opts options.ParserOptions) *parser.Parser {
	t.Helper()
	return parser.New(parser.Config{Options: opts})
}

func TestCollectEvents(t *testing.T) {
	p := newTestParser(t, options.ParserOptions{})

	for _, useBytes := range []bool{false, true} {
		doc, err := collectEvents(p, []byte("# Hi\n"), useBytes, 0)
		require.NoError(t, err)
		assert.False(t, doc.Stopped)
		assert.Equal(t, []eventRecord{
			{Event: "enter_block", Type: "doc"},
			{Event: "enter_block", Type: "h", Detail: map[string]any{"level": 1}},
			{Event: "text", Type: "normal", Text: "Hi"},
			{Event: "leave_block", Type: "h", Detail: map[string]any{"level": 1}},
			{Event: "leave_block", Type: "doc"},
		}, doc.Events)
	}
}

func TestCollectEventsStopAfter(t *testing.T) {
	p := newTestParser(t, options.ParserOptions{})

	doc, err := collectEvents(p, []byte("# Hi\n\nmore text\n"), false, 2)
	require.NoError(t, err)
	assert.True(t, doc.Stopped)
	require.Len(t, doc.Events, 2)
	assert.Equal(t, "h", doc.Events[1].Type)
}

func TestDetailFields(t *testing.T) {
	p := newTestParser(t, options.ParserOptions{Tables: true})

	t.Run("link", func(t *testing.T) {
		doc, err := collectEvents(p, []byte("[a](/u)\n"), false, 0)
		require.NoError(t, err)
		require.Len(t, doc.Events, 7)

		link := doc.Events[2]
		assert.Equal(t, "enter_span", link.Event)
		assert.Equal(t, "a", link.Type)
		assert.Equal(t, []subRunRecord{{Kind: "normal", Text: "/u"}}, link.Detail["href"])
		title, ok := link.Detail["title"]
		assert.True(t, ok)
		assert.Nil(t, title)
	})

	t.Run("fenced code", func(t *testing.T) {
		doc, err := collectEvents(p, []byte("~~~go\nx\n~~~\n"), true, 0)
		require.NoError(t, err)

		code := doc.Events[1]
		assert.Equal(t, "code", code.Type)
		assert.Equal(t, "~", code.Detail["fence_char"])
		assert.Equal(t, []subRunRecord{{Kind: "normal", Text: "go"}}, code.Detail["lang"])
		assert.Equal(t, eventRecord{Event: "text", Type: "code", Text: "x\n"}, doc.Events[2])
	})

	t.Run("table cell alignment", func(t *testing.T) {
		doc, err := collectEvents(p, []byte("| a |\n|:-:|\n| b |\n"), false, 0)
		require.NoError(t, err)

		var aligns []any
		for _, ev := range doc.Events {
			if ev.Event == "enter_block" && (ev.Type == "th" || ev.Type == "td") {
				aligns = append(aligns, ev.Detail["align"])
			}
		}
		assert.Equal(t, []any{"center", "center"}, aligns)
	})

	t.Run("no detail", func(t *testing.T) {
		assert.Nil(t, detailFields(parser.NoDetail{}))
		assert.Nil(t, detailFields(nil))
	})
}

func TestWriteDocuments(t *testing.T) {
	docs := []documentRecord{{
		Source: "doc.md",
		Events: []eventRecord{
			{Event: "enter_block", Type: "doc"},
			{Event: "text", Type: "normal", Text: "hi"},
		},
	}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeDocuments(&buf, formatJSON, docs))

		var got []documentRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, docs, got)
		assert.NotContains(t, buf.String(), "stopped")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeDocuments(&buf, formatYAML, docs))
		assert.Contains(t, buf.String(), "source: doc.md")

		var got []documentRecord
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, docs, got)
	})

	t.Run("unknown", func(t *testing.T) {
		err := writeDocuments(&bytes.Buffer{}, "xml", docs)
		require.Error(t, err)
	})
}
