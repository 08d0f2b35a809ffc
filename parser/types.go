package parser

import (
	"fmt"

	"github.com/rgonek/md4go/internal/engine"
)

// BlockType identifies a block element.
type BlockType int

const (
	BlockDoc   = BlockType(engine.BlockDoc)
	BlockQuote = BlockType(engine.BlockQuote)
	BlockUL    = BlockType(engine.BlockUL)
	BlockOL    = BlockType(engine.BlockOL)
	BlockLI    = BlockType(engine.BlockLI)
	BlockHR    = BlockType(engine.BlockHR)
	BlockH     = BlockType(engine.BlockH)
	BlockCode  = BlockType(engine.BlockCode)
	BlockHTML  = BlockType(engine.BlockHTML)
	BlockP     = BlockType(engine.BlockP)
	BlockTable = BlockType(engine.BlockTable)
	BlockTHead = BlockType(engine.BlockTHead)
	BlockTBody = BlockType(engine.BlockTBody)
	BlockTR    = BlockType(engine.BlockTR)
	BlockTH    = BlockType(engine.BlockTH)
	BlockTD    = BlockType(engine.BlockTD)
)

var blockTypeNames = []string{
	"doc", "quote", "ul", "ol", "li", "hr", "h", "code",
	"html", "p", "table", "thead", "tbody", "tr", "th", "td",
}

func (t BlockType) String() string {
	return enumName(blockTypeNames, int(t), "BlockType")
}

// SpanType identifies an inline element.
type SpanType int

const (
	SpanEm               = SpanType(engine.SpanEm)
	SpanStrong           = SpanType(engine.SpanStrong)
	SpanA                = SpanType(engine.SpanA)
	SpanImg              = SpanType(engine.SpanImg)
	SpanCode             = SpanType(engine.SpanCode)
	SpanDel              = SpanType(engine.SpanDel)
	SpanLatexMath        = SpanType(engine.SpanLatexMath)
	SpanLatexMathDisplay = SpanType(engine.SpanLatexMathDisplay)
	SpanWikiLink         = SpanType(engine.SpanWikiLink)
	SpanU                = SpanType(engine.SpanU)
)

var spanTypeNames = []string{
	"em", "strong", "a", "img", "code", "del",
	"latexmath", "latexmath_display", "wikilink", "u",
}

func (t SpanType) String() string {
	return enumName(spanTypeNames, int(t), "SpanType")
}

// TextType tags a run of document content.
type TextType int

const (
	TextNormal    = TextType(engine.TextNormal)
	TextNullChar  = TextType(engine.TextNullChar)
	TextBR        = TextType(engine.TextBR)
	TextSoftBR    = TextType(engine.TextSoftBR)
	TextEntity    = TextType(engine.TextEntity)
	TextCode      = TextType(engine.TextCode)
	TextHTML      = TextType(engine.TextHTML)
	TextLatexMath = TextType(engine.TextLatexMath)
)

var textTypeNames = []string{
	"normal", "nullchar", "br", "softbr", "entity", "code", "html", "latexmath",
}

func (t TextType) String() string {
	return enumName(textTypeNames, int(t), "TextType")
}

// Align is the alignment of a table cell.
type Align int

const (
	AlignDefault = Align(engine.AlignDefault)
	AlignLeft    = Align(engine.AlignLeft)
	AlignCenter  = Align(engine.AlignCenter)
	AlignRight   = Align(engine.AlignRight)
)

var alignNames = []string{"default", "left", "center", "right"}

func (a Align) String() string {
	return enumName(alignNames, int(a), "Align")
}

func enumName(names []string, v int, typ string) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typ, v)
}
