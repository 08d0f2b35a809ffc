package engine

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const fenceCharAttribute = "md4go-fence-char"

// PermissiveATXHeadingParser accepts headings whose opening '#' run is not
// followed by a space, such as "#Title". Regular headings are left to the
// standard ATX parser.
type PermissiveATXHeadingParser struct{}

func NewPermissiveATXHeadingParser() parser.BlockParser {
	return &PermissiveATXHeadingParser{}
}

func (p *PermissiveATXHeadingParser) Trigger() []byte {
	return []byte{'#'}
}

func (p *PermissiveATXHeadingParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pc.BlockIndent() > 3 {
		return nil, parser.NoChildren
	}

	i := pos
	for i < len(line) && line[i] == '#' {
		i++
	}
	level := i - pos
	if level == 0 || level > 6 || i >= len(line) || util.IsSpace(line[i]) {
		return nil, parser.NoChildren
	}

	stop := len(line) - util.TrimRightSpaceLength(line)
	closing := stop
	for closing > i && line[closing-1] == '#' {
		closing--
	}
	if closing < stop && closing > i && util.IsSpace(line[closing-1]) {
		stop = closing - util.TrimRightSpaceLength(line[i:closing])
	}

	node := ast.NewHeading(level)
	if stop > i {
		node.Lines().Append(text.NewSegment(segment.Start+i, segment.Start+stop))
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *PermissiveATXHeadingParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *PermissiveATXHeadingParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *PermissiveATXHeadingParser) CanInterruptParagraph() bool {
	return true
}

func (p *PermissiveATXHeadingParser) CanAcceptIndentedLine() bool {
	return false
}

// indentedParagraphParser is the paragraph parser for documents without
// indented code blocks. goldmark only offers a line indented four or more
// columns to parsers that accept indented lines, so without it such a line
// would open no block at all. The paragraph parser trims the indent.
type indentedParagraphParser struct {
	parser.BlockParser
}

func newIndentedParagraphParser() parser.BlockParser {
	return &indentedParagraphParser{BlockParser: parser.NewParagraphParser()}
}

func (p *indentedParagraphParser) CanAcceptIndentedLine() bool {
	return true
}

// fenceRecorder wraps the fenced code parser and remembers which fence
// character opened each block.
type fenceRecorder struct {
	parser.BlockParser
}

func newFenceRecorder(inner parser.BlockParser) parser.BlockParser {
	return &fenceRecorder{BlockParser: inner}
}

func (p *fenceRecorder) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	fence := byte(0)
	for _, c := range line {
		if c != ' ' && c != '\t' {
			fence = c
			break
		}
	}

	node, state := p.BlockParser.Open(parent, reader, pc)
	if node != nil && fence != 0 {
		node.SetAttributeString(fenceCharAttribute, fence)
	}
	return node, state
}

func fenceChar(node ast.Node) byte {
	v, ok := node.AttributeString(fenceCharAttribute)
	if !ok {
		return '`'
	}
	if c, ok := v.(byte); ok {
		return c
	}
	return '`'
}
