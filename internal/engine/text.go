package engine

import (
	"github.com/yuin/goldmark/util"
)

// run is a piece of literal content tagged with its text type.
type run struct {
	typ  TextType
	text []byte
}

var newline = []byte{'\n'}

// splitInline splits inline source text into normal, entity and null-char
// runs. Backslash escapes of ASCII punctuation are resolved; the escaped
// character starts the next normal run.
func splitInline(value []byte) []run {
	var runs []run
	start := 0
	flush := func(stop int) {
		if stop > start {
			runs = append(runs, run{typ: TextNormal, text: value[start:stop]})
		}
	}

	for i := 0; i < len(value); {
		c := value[i]
		switch {
		case c == '\\' && i+1 < len(value) && util.IsPunct(value[i+1]):
			flush(i)
			start = i + 1
			i += 2
		case c == '&':
			n := entityLength(value[i:])
			if n == 0 {
				i++
				continue
			}
			flush(i)
			runs = append(runs, run{typ: TextEntity, text: value[i : i+n]})
			i += n
			start = i
		case c == 0:
			flush(i)
			runs = append(runs, run{typ: TextNullChar, text: value[i : i+1]})
			i++
			start = i
		default:
			i++
		}
	}
	flush(len(value))
	return runs
}

// splitRaw splits raw content, such as code or math, on null characters
// only.
func splitRaw(typ TextType, value []byte) []run {
	var runs []run
	start := 0
	for i, c := range value {
		if c != 0 {
			continue
		}
		if i > start {
			runs = append(runs, run{typ: typ, text: value[start:i]})
		}
		runs = append(runs, run{typ: TextNullChar, text: value[i : i+1]})
		start = i + 1
	}
	if start < len(value) {
		runs = append(runs, run{typ: typ, text: value[start:]})
	}
	return runs
}

// entityLength returns the length of the entity or numeric character
// reference at the start of b, or 0 when b does not start with one.
func entityLength(b []byte) int {
	if len(b) < 3 || b[0] != '&' {
		return 0
	}
	if b[1] == '#' {
		i := 2
		hex := i < len(b) && (b[i] == 'x' || b[i] == 'X')
		if hex {
			i++
		}
		digits := 0
		for i < len(b) && digits <= 7 {
			c := b[i]
			if hex && util.IsHexDecimal(c) || !hex && util.IsNumeric(c) {
				i++
				digits++
				continue
			}
			break
		}
		maxDigits := 7
		if hex {
			maxDigits = 6
		}
		if digits == 0 || digits > maxDigits || i >= len(b) || b[i] != ';' {
			return 0
		}
		return i + 1
	}

	i := 1
	for i < len(b) && i <= 32 && util.IsAlphaNumeric(b[i]) {
		i++
	}
	if i == 1 || i >= len(b) || b[i] != ';' {
		return 0
	}
	if _, ok := util.LookUpHTML5EntityByName(string(b[1:i])); !ok {
		return 0
	}
	return i + 1
}

// collapseSpace folds every run of whitespace into a single space. b is
// returned unchanged when there is nothing to fold.
func collapseSpace(b []byte) []byte {
	needs := false
	for i, c := range b {
		if isCollapsible(c) && (c != ' ' || i+1 < len(b) && isCollapsible(b[i+1])) {
			needs = true
			break
		}
	}
	if !needs {
		return b
	}

	out := make([]byte, 0, len(b))
	inSpace := false
	for _, c := range b {
		if isCollapsible(c) {
			if !inSpace {
				out = append(out, ' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		out = append(out, c)
	}
	return out
}

func isCollapsible(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// newAttribute concatenates runs into an attribute. Adjacent normal runs
// share one sub-run. An attribute without text is returned empty.
func newAttribute(runs []run) Attribute {
	size := 0
	for _, r := range runs {
		size += len(r.text)
	}
	if size == 0 {
		return Attribute{}
	}

	attr := Attribute{Text: make([]byte, 0, size)}
	for _, r := range runs {
		if len(r.text) == 0 {
			continue
		}
		last := len(attr.SubstrTypes) - 1
		if last < 0 || r.typ != TextNormal || attr.SubstrTypes[last] != TextNormal {
			attr.SubstrTypes = append(attr.SubstrTypes, r.typ)
			attr.SubstrOffsets = append(attr.SubstrOffsets, len(attr.Text))
		}
		attr.Text = append(attr.Text, r.text...)
	}
	attr.SubstrOffsets = append(attr.SubstrOffsets, len(attr.Text))
	return attr
}

// attributeFrom builds an attribute from inline source text.
func attributeFrom(value []byte) Attribute {
	return newAttribute(splitInline(value))
}

// verbatimAttribute builds an attribute whose text takes no escapes or
// entities, such as an autolink destination.
func verbatimAttribute(value []byte) Attribute {
	return newAttribute(splitRaw(TextNormal, value))
}
