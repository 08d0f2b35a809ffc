package parser

// Text is a piece of document content. It carries the form of the input it
// came from: ParseString yields string-backed Text and ParseBytes yields
// byte-backed Text.
type Text struct {
	s       string
	b       []byte
	isBytes bool
}

// StringText returns a string-backed Text.
func StringText(s string) Text {
	return Text{s: s}
}

// BytesText returns a byte-backed Text that owns a copy of b.
func BytesText(b []byte) Text {
	return Text{b: append([]byte{}, b...), isBytes: true}
}

// String returns the content as a string.
func (t Text) String() string {
	if t.isBytes {
		return string(t.b)
	}
	return t.s
}

// Bytes returns the content as bytes. For byte-backed Text the returned
// slice is shared; callers must not modify it.
func (t Text) Bytes() []byte {
	if t.isBytes {
		return t.b
	}
	return []byte(t.s)
}

// IsBytes reports whether t came from byte input.
func (t Text) IsBytes() bool {
	return t.isBytes
}

// Len returns the content length in bytes.
func (t Text) Len() int {
	if t.isBytes {
		return len(t.b)
	}
	return len(t.s)
}

type textFunc func([]byte) Text

func stringFromBytes(b []byte) Text {
	return Text{s: string(b)}
}

// textConstructor picks the Text form for a whole parse call.
func textConstructor(isBytes bool) textFunc {
	if isBytes {
		return BytesText
	}
	return stringFromBytes
}
