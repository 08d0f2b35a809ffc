package engine

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// walker turns a goldmark tree into callback events.
type walker struct {
	source   []byte
	p        *Parser
	collapse bool
	// rawText is the text type for raw text nodes in the current span.
	rawText TextType
}

func (w *walker) node(n ast.Node) error {
	if n.Type() == ast.TypeInline {
		return w.inline(n)
	}
	return w.block(n)
}

func (w *walker) children(n ast.Node) error {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := w.node(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) block(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Document:
		return w.container(BlockDoc, nil, n)
	case *ast.Blockquote:
		return w.container(BlockQuote, nil, n)
	case *ast.List:
		if n.IsOrdered() {
			start := uint(0)
			if n.Start > 0 {
				start = uint(n.Start)
			}
			return w.container(BlockOL, &OLDetail{Start: start, IsTight: n.IsTight, MarkDelimiter: n.Marker}, n)
		}
		return w.container(BlockUL, &ULDetail{IsTight: n.IsTight, Mark: n.Marker}, n)
	case *ast.ListItem:
		return w.container(BlockLI, w.listItemDetail(n), n)
	case *ast.ThematicBreak:
		return w.container(BlockHR, nil, n)
	case *ast.Heading:
		return w.container(BlockH, &HDetail{Level: n.Level}, n)
	case *ast.FencedCodeBlock:
		return w.codeBlock(n, w.fencedCodeDetail(n))
	case *ast.CodeBlock:
		return w.codeBlock(n, &CodeDetail{})
	case *ast.HTMLBlock:
		return w.htmlBlock(n)
	case *ast.Paragraph:
		return w.container(BlockP, nil, n)
	case *ast.TextBlock:
		return w.children(n)
	case *extast.Table:
		return w.table(n)
	default:
		return w.children(n)
	}
}

func (w *walker) container(typ BlockType, detail any, n ast.Node) error {
	if err := w.enterBlock(typ, detail); err != nil {
		return err
	}
	if err := w.children(n); err != nil {
		return err
	}
	return w.leaveBlock(typ, detail)
}

func (w *walker) listItemDetail(li *ast.ListItem) *LIDetail {
	first := li.FirstChild()
	if first == nil {
		return &LIDetail{}
	}
	box, ok := first.FirstChild().(*extast.TaskCheckBox)
	if !ok {
		return &LIDetail{}
	}

	detail := &LIDetail{IsTask: true, TaskMark: ' '}
	if box.IsChecked {
		detail.TaskMark = 'x'
	}
	lines := first.Lines()
	if lines.Len() == 0 {
		return detail
	}
	// The item's paragraph begins at the checkbox, so the '[' is found in
	// its first line segment, which points into the original source.
	seg := lines.At(0)
	for i := seg.Start; i < seg.Stop && i+1 < len(w.source); i++ {
		if w.source[i] == '[' {
			detail.TaskMark = w.source[i+1]
			detail.TaskMarkOffset = i + 1
			break
		}
	}
	return detail
}

func (w *walker) fencedCodeDetail(n *ast.FencedCodeBlock) *CodeDetail {
	detail := &CodeDetail{FenceChar: fenceChar(n)}
	if n.Info == nil {
		return detail
	}
	info := n.Info.Segment.Value(w.source)
	detail.Info = attributeFrom(info)
	lang := info
	if i := bytes.IndexAny(info, " \t"); i >= 0 {
		lang = info[:i]
	}
	detail.Lang = attributeFrom(lang)
	return detail
}

func (w *walker) codeBlock(n ast.Node, detail *CodeDetail) error {
	if err := w.enterBlock(BlockCode, detail); err != nil {
		return err
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if err := w.runs(splitRaw(TextCode, seg.Value(w.source))); err != nil {
			return err
		}
	}
	return w.leaveBlock(BlockCode, detail)
}

func (w *walker) htmlBlock(n *ast.HTMLBlock) error {
	if err := w.enterBlock(BlockHTML, nil); err != nil {
		return err
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if err := w.text(TextHTML, seg.Value(w.source)); err != nil {
			return err
		}
	}
	if n.HasClosure() {
		if err := w.text(TextHTML, n.ClosureLine.Value(w.source)); err != nil {
			return err
		}
	}
	return w.leaveBlock(BlockHTML, nil)
}

func (w *walker) table(t *extast.Table) error {
	detail := &TableDetail{ColCount: len(t.Alignments)}
	var head ast.Node
	var rows []ast.Node
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *extast.TableHeader:
			head = c
			detail.HeadRowCount = 1
		case *extast.TableRow:
			rows = append(rows, c)
		}
	}
	detail.BodyRowCount = len(rows)

	if err := w.enterBlock(BlockTable, detail); err != nil {
		return err
	}
	if head != nil {
		if err := w.enterBlock(BlockTHead, nil); err != nil {
			return err
		}
		if err := w.row(head, BlockTH); err != nil {
			return err
		}
		if err := w.leaveBlock(BlockTHead, nil); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if err := w.enterBlock(BlockTBody, nil); err != nil {
			return err
		}
		for _, r := range rows {
			if err := w.row(r, BlockTD); err != nil {
				return err
			}
		}
		if err := w.leaveBlock(BlockTBody, nil); err != nil {
			return err
		}
	}
	return w.leaveBlock(BlockTable, detail)
}

func (w *walker) row(r ast.Node, cell BlockType) error {
	if err := w.enterBlock(BlockTR, nil); err != nil {
		return err
	}
	for c := r.FirstChild(); c != nil; c = c.NextSibling() {
		tc, ok := c.(*extast.TableCell)
		if !ok {
			continue
		}
		if err := w.container(cell, &TDDetail{Align: alignOf(tc.Alignment)}, tc); err != nil {
			return err
		}
	}
	return w.leaveBlock(BlockTR, nil)
}

func alignOf(a extast.Alignment) Align {
	switch a {
	case extast.AlignLeft:
		return AlignLeft
	case extast.AlignCenter:
		return AlignCenter
	case extast.AlignRight:
		return AlignRight
	default:
		return AlignDefault
	}
}

func (w *walker) inline(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Text:
		return w.textNode(n)
	case *ast.String:
		typ := TextNormal
		if n.IsCode() {
			typ = TextCode
		}
		return w.text(typ, n.Value)
	case *ast.CodeSpan:
		return w.rawSpan(SpanCode, TextCode, n)
	case *ast.Emphasis:
		typ := SpanEm
		if n.Level >= 2 {
			typ = SpanStrong
		}
		return w.span(typ, nil, n)
	case *ast.Link:
		return w.span(SpanA, &ADetail{Href: attributeFrom(n.Destination), Title: attributeFrom(n.Title)}, n)
	case *ast.Image:
		return w.span(SpanImg, &ImgDetail{Src: attributeFrom(n.Destination), Title: attributeFrom(n.Title)}, n)
	case *ast.AutoLink:
		return w.autoLink(n)
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			if err := w.text(TextHTML, seg.Value(w.source)); err != nil {
				return err
			}
		}
		return nil
	case *extast.Strikethrough:
		return w.span(SpanDel, nil, n)
	case *extast.TaskCheckBox:
		return nil
	case *Underline:
		return w.span(SpanU, nil, n)
	case *Math:
		if n.Display {
			return w.rawSpan(SpanLatexMathDisplay, TextLatexMath, n)
		}
		return w.rawSpan(SpanLatexMath, TextLatexMath, n)
	case *WikiLink:
		return w.span(SpanWikiLink, &WikiLinkDetail{Target: attributeFrom(n.Target)}, n)
	default:
		return w.children(n)
	}
}

func (w *walker) span(typ SpanType, detail any, n ast.Node) error {
	if err := w.enterSpan(typ, detail); err != nil {
		return err
	}
	if err := w.children(n); err != nil {
		return err
	}
	return w.leaveSpan(typ, detail)
}

func (w *walker) rawSpan(typ SpanType, raw TextType, n ast.Node) error {
	saved := w.rawText
	w.rawText = raw
	defer func() { w.rawText = saved }()
	return w.span(typ, nil, n)
}

func (w *walker) autoLink(n *ast.AutoLink) error {
	url := n.URL(w.source)
	if n.AutoLinkType == ast.AutoLinkEmail && !hasPrefixFold(url, "mailto:") {
		url = append([]byte("mailto:"), url...)
	}
	detail := &ADetail{Href: verbatimAttribute(url), IsAutolink: true}
	if err := w.enterSpan(SpanA, detail); err != nil {
		return err
	}
	if err := w.runs(splitRaw(TextNormal, n.Label(w.source))); err != nil {
		return err
	}
	return w.leaveSpan(SpanA, detail)
}

func (w *walker) textNode(t *ast.Text) error {
	value := t.Segment.Value(w.source)
	if t.IsRaw() {
		if w.rawText == TextCode && len(value) > 0 && value[len(value)-1] == '\n' {
			trimmed := make([]byte, len(value))
			copy(trimmed, value)
			trimmed[len(trimmed)-1] = ' '
			value = trimmed
		}
		return w.runs(splitRaw(w.rawText, value))
	}

	runs := splitInline(value)
	if w.collapse {
		for i := range runs {
			if runs[i].typ == TextNormal {
				runs[i].text = collapseSpace(runs[i].text)
			}
		}
	}
	if err := w.runs(runs); err != nil {
		return err
	}

	switch {
	case t.HardLineBreak():
		return w.text(TextBR, newline)
	case t.SoftLineBreak():
		return w.text(TextSoftBR, newline)
	}
	return nil
}

func (w *walker) runs(runs []run) error {
	for _, r := range runs {
		if err := w.text(r.typ, r.text); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) enterBlock(typ BlockType, detail any) error {
	if w.p.EnterBlock == nil {
		return nil
	}
	return w.p.EnterBlock(typ, detail)
}

func (w *walker) leaveBlock(typ BlockType, detail any) error {
	if w.p.LeaveBlock == nil {
		return nil
	}
	return w.p.LeaveBlock(typ, detail)
}

func (w *walker) enterSpan(typ SpanType, detail any) error {
	if w.p.EnterSpan == nil {
		return nil
	}
	return w.p.EnterSpan(typ, detail)
}

func (w *walker) leaveSpan(typ SpanType, detail any) error {
	if w.p.LeaveSpan == nil {
		return nil
	}
	return w.p.LeaveSpan(typ, detail)
}

func (w *walker) text(typ TextType, text []byte) error {
	if w.p.Text == nil || len(text) == 0 {
		return nil
	}
	return w.p.Text(typ, text)
}
