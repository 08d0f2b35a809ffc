package engine

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const maxWikiLinkTarget = 100

type underlineDelimiterProcessor struct{}

func (p *underlineDelimiterProcessor) IsDelimiter(b byte) bool {
	return b == '_'
}

func (p *underlineDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *underlineDelimiterProcessor) OnMatch(consumes int) ast.Node {
	return NewUnderline()
}

var defaultUnderlineDelimiterProcessor = &underlineDelimiterProcessor{}

// UnderlineParser turns underscore emphasis into Underline nodes. It runs
// ahead of the emphasis parser so '_' never produces <em>.
type UnderlineParser struct{}

func NewUnderlineParser() parser.InlineParser {
	return &UnderlineParser{}
}

func (p *UnderlineParser) Trigger() []byte {
	return []byte{'_'}
}

func (p *UnderlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, defaultUnderlineDelimiterProcessor)
	if node == nil {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

// MathParser reads $...$ and $$...$$ equations. Content may span lines of
// the same paragraph and is kept raw.
type MathParser struct{}

func NewMathParser() parser.InlineParser {
	return &MathParser{}
}

func (p *MathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *MathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, startSegment := block.PeekLine()
	opener := 0
	for opener < len(line) && line[opener] == '$' {
		opener++
	}
	if opener > 2 || opener >= len(line) || isMathSpace(line[opener]) {
		return nil
	}

	block.Advance(opener)
	l, pos := block.Position()
	node := NewMath(opener == 2)
	prev := byte(0)

	for {
		line, segment := block.PeekLine()
		if line == nil {
			block.SetPosition(l, pos)
			return ast.NewTextSegment(startSegment.WithStop(startSegment.Start + opener))
		}

		for i := 0; i < len(line); i++ {
			if line[i] != '$' {
				prev = line[i]
				continue
			}
			j := i
			for j < len(line) && line[j] == '$' {
				j++
			}
			if j-i == opener && !isMathSpace(prev) && (j == len(line) || !isDigit(line[j])) {
				if i > 0 {
					node.AppendChild(node, ast.NewRawTextSegment(segment.WithStop(segment.Start+i)))
				}
				block.Advance(j)
				return node
			}
			prev = '$'
			i = j - 1
		}
		node.AppendChild(node, ast.NewRawTextSegment(segment))
		block.AdvanceLine()
	}
}

func isMathSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// WikiLinkParser reads [[target]] and [[target|label]] on a single line.
type WikiLinkParser struct{}

func NewWikiLinkParser() parser.InlineParser {
	return &WikiLinkParser{}
}

func (p *WikiLinkParser) Trigger() []byte {
	return []byte{'['}
}

func (p *WikiLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if !bytes.HasPrefix(line, []byte("[[")) {
		return nil
	}
	end := bytes.Index(line[2:], []byte("]]"))
	if end < 0 {
		return nil
	}
	end += 2

	inner := line[2:end]
	if bytes.ContainsAny(inner, "[]\r\n") {
		return nil
	}
	target, labelStart := inner, 2
	if bar := bytes.IndexByte(inner, '|'); bar >= 0 {
		target = inner[:bar]
		labelStart = 2 + bar + 1
	}
	if len(bytes.TrimSpace(target)) == 0 || len(target) > maxWikiLinkTarget {
		return nil
	}

	node := NewWikiLink(append([]byte(nil), target...))
	label := text.NewSegment(segment.Start+labelStart, segment.Start+end)
	if !label.IsEmpty() {
		node.AppendChild(node, ast.NewTextSegment(label))
	}
	block.Advance(end + 2)
	return node
}

// autolinkFilter wraps the linkify parser and drops the link kinds whose
// permissive flag is off.
type autolinkFilter struct {
	parser.InlineParser
	flags Flag
}

func newAutolinkFilter(inner parser.InlineParser, flags Flag) parser.InlineParser {
	return &autolinkFilter{InlineParser: inner, flags: flags}
}

func (p *autolinkFilter) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	l, pos := block.Position()
	last := parent.LastChild()
	lastText, _ := last.(*ast.Text)
	var lastSegment text.Segment
	if lastText != nil {
		lastSegment = lastText.Segment
	}

	node := p.InlineParser.Parse(parent, block, pc)
	link, ok := node.(*ast.AutoLink)
	if !ok || p.allows(link, block.Source()) {
		return node
	}

	// Linkify may have merged a consumed leading character into the parent.
	for c := parent.LastChild(); c != nil && c != last; c = parent.LastChild() {
		parent.RemoveChild(parent, c)
	}
	if lastText != nil {
		lastText.Segment = lastSegment
	}
	block.SetPosition(l, pos)
	return nil
}

func (p *autolinkFilter) allows(link *ast.AutoLink, source []byte) bool {
	switch {
	case link.AutoLinkType == ast.AutoLinkEmail:
		return p.flags.Has(FlagPermissiveEmailAutolinks)
	case hasPrefixFold(link.Label(source), "www."):
		return p.flags.Has(FlagPermissiveWWWAutolinks)
	default:
		return p.flags.Has(FlagPermissiveURLAutolinks)
	}
}

func hasPrefixFold(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && bytes.EqualFold(b[:len(prefix)], []byte(prefix))
}
