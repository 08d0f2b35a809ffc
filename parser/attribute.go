package parser

import (
	"strings"

	"github.com/rgonek/md4go/internal/engine"
)

// SubRun is one typed segment of an attribute.
type SubRun struct {
	Kind TextType
	Text Text
}

// AttributeRun is the content of an element attribute such as a link
// destination, split into typed segments. A nil AttributeRun means the
// attribute is absent.
type AttributeRun []SubRun

// Text concatenates every segment back into the verbatim attribute text.
// An absent attribute has no segments to take the input form from and
// yields the zero Text, which is string-backed and empty.
func (a AttributeRun) Text() Text {
	if len(a) == 0 {
		return Text{}
	}
	if a[0].Text.IsBytes() {
		var b []byte
		for _, r := range a {
			b = append(b, r.Text.Bytes()...)
		}
		return Text{b: b, isBytes: true}
	}
	var sb strings.Builder
	for _, r := range a {
		sb.WriteString(r.Text.String())
	}
	return StringText(sb.String())
}

// String is the concatenated attribute text.
func (a AttributeRun) String() string {
	return a.Text().String()
}

// buildAttribute converts an engine attribute. Segments are read until the
// running offset reaches the attribute size.
func buildAttribute(raw engine.Attribute, newText textFunc) AttributeRun {
	size := len(raw.Text)
	if size == 0 {
		return nil
	}

	run := make(AttributeRun, 0, len(raw.SubstrTypes))
	for i := 0; i < len(raw.SubstrTypes) && i+1 < len(raw.SubstrOffsets); i++ {
		start, end := raw.SubstrOffsets[i], raw.SubstrOffsets[i+1]
		if start >= size {
			break
		}
		if end > size {
			end = size
		}
		run = append(run, SubRun{
			Kind: TextType(raw.SubstrTypes[i]),
			Text: newText(raw.Text[start:end]),
		})
	}
	return run
}
