package engine

// Flag is a parser option bit.
type Flag uint32

const (
	FlagCollapseWhitespace       Flag = 0x0001
	FlagPermissiveATXHeaders     Flag = 0x0002
	FlagPermissiveURLAutolinks   Flag = 0x0004
	FlagPermissiveEmailAutolinks Flag = 0x0008
	FlagNoIndentedCodeBlocks     Flag = 0x0010
	FlagNoHTMLBlocks             Flag = 0x0020
	FlagNoHTMLSpans              Flag = 0x0040
	FlagTables                   Flag = 0x0100
	FlagStrikethrough            Flag = 0x0200
	FlagPermissiveWWWAutolinks   Flag = 0x0400
	FlagTaskLists                Flag = 0x0800
	FlagLatexMathSpans           Flag = 0x1000
	FlagWikiLinks                Flag = 0x2000
	FlagUnderline                Flag = 0x4000

	FlagPermissiveAutolinks = FlagPermissiveEmailAutolinks | FlagPermissiveURLAutolinks | FlagPermissiveWWWAutolinks
	FlagNoHTML              = FlagNoHTMLBlocks | FlagNoHTMLSpans

	DialectCommonMark Flag = 0
	DialectGitHub          = FlagPermissiveAutolinks | FlagTables | FlagStrikethrough | FlagTaskLists
)

// Has reports whether every bit of other is set in f.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// BlockType identifies a block element.
type BlockType int

const (
	BlockDoc BlockType = iota
	BlockQuote
	BlockUL
	BlockOL
	BlockLI
	BlockHR
	BlockH
	BlockCode
	BlockHTML
	BlockP
	BlockTable
	BlockTHead
	BlockTBody
	BlockTR
	BlockTH
	BlockTD
)

// SpanType identifies an inline element.
type SpanType int

const (
	SpanEm SpanType = iota
	SpanStrong
	SpanA
	SpanImg
	SpanCode
	SpanDel
	SpanLatexMath
	SpanLatexMathDisplay
	SpanWikiLink
	SpanU
)

// TextType tags a run of literal content.
type TextType int

const (
	TextNormal TextType = iota
	TextNullChar
	TextBR
	TextSoftBR
	TextEntity
	TextCode
	TextHTML
	TextLatexMath
)

// Align is the alignment of a table column.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Attribute is element data that may hold entities or null characters but
// never nested markup. Text is nil when the attribute does not apply.
//
// SubstrOffsets has one more entry than SubstrTypes; its last entry equals
// len(Text). Sub-run i spans Text[SubstrOffsets[i]:SubstrOffsets[i+1]].
type Attribute struct {
	Text          []byte
	SubstrTypes   []TextType
	SubstrOffsets []int
}

// ULDetail is passed with BlockUL.
type ULDetail struct {
	IsTight bool
	Mark    byte
}

// OLDetail is passed with BlockOL.
type OLDetail struct {
	Start         uint
	IsTight       bool
	MarkDelimiter byte
}

// LIDetail is passed with BlockLI. TaskMark and TaskMarkOffset are only
// meaningful when IsTask is set.
type LIDetail struct {
	IsTask         bool
	TaskMark       byte
	TaskMarkOffset int
}

// HDetail is passed with BlockH.
type HDetail struct {
	Level int
}

// CodeDetail is passed with BlockCode. FenceChar is zero for indented code
// blocks, in which case Info and Lang have no text.
type CodeDetail struct {
	Info      Attribute
	Lang      Attribute
	FenceChar byte
}

// TableDetail is passed with BlockTable.
type TableDetail struct {
	ColCount     int
	HeadRowCount int
	BodyRowCount int
}

// TDDetail is passed with BlockTH and BlockTD.
type TDDetail struct {
	Align Align
}

// ADetail is passed with SpanA.
type ADetail struct {
	Href       Attribute
	Title      Attribute
	IsAutolink bool
}

// ImgDetail is passed with SpanImg.
type ImgDetail struct {
	Src   Attribute
	Title Attribute
}

// WikiLinkDetail is passed with SpanWikiLink.
type WikiLinkDetail struct {
	Target Attribute
}
