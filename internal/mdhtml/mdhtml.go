// Package mdhtml renders Markdown to HTML from engine events. Output is
// handed to the caller in chunks as it is produced.
package mdhtml

import (
	"bytes"
	"strconv"

	"golang.org/x/net/html"

	"github.com/rgonek/md4go/internal/engine"
	"github.com/yuin/goldmark/util"
)

// Flag is a renderer option bit.
type Flag uint32

const (
	FlagDebug            Flag = 0x0001
	FlagVerbatimEntities Flag = 0x0002
	FlagSkipUTF8BOM      Flag = 0x0004
	FlagXHTML            Flag = 0x0008
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var replacementChar = []byte("�")

// Options configures one Render call.
type Options struct {
	ParserFlags engine.Flag
	Flags       Flag
	// DebugLog receives engine diagnostics when FlagDebug is set.
	DebugLog func(msg string)
}

// Render converts input to HTML and passes the output to process piece by
// piece. An error from process stops rendering and is returned unchanged.
func Render(input []byte, process func([]byte) error, opts Options) error {
	if opts.Flags&FlagSkipUTF8BOM != 0 {
		input = bytes.TrimPrefix(input, utf8BOM)
	}

	r := &htmlRenderer{process: process, flags: opts.Flags}
	p := &engine.Parser{
		Flags:      opts.ParserFlags,
		EnterBlock: r.enterBlock,
		LeaveBlock: r.leaveBlock,
		EnterSpan:  r.enterSpan,
		LeaveSpan:  r.leaveSpan,
		Text:       r.text,
	}
	if opts.Flags&FlagDebug != 0 {
		p.DebugLog = opts.DebugLog
	}
	return engine.Parse(input, p)
}

type htmlRenderer struct {
	process func([]byte) error
	flags   Flag
	// imageNesting counts open images; their content goes to the alt text.
	imageNesting int
}

func (r *htmlRenderer) write(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return r.process(b)
}

func (r *htmlRenderer) writeString(s string) error {
	return r.write([]byte(s))
}

func (r *htmlRenderer) writeEscaped(b []byte) error {
	return r.write(util.EscapeHTML(b))
}

func (r *htmlRenderer) writeURL(b []byte) error {
	return r.write(util.EscapeHTML(util.URLEscape(b, false)))
}

// voidEnd closes an element without content.
func (r *htmlRenderer) voidEnd() string {
	if r.flags&FlagXHTML != 0 {
		return " />"
	}
	return ">"
}

func (r *htmlRenderer) enterBlock(typ engine.BlockType, detail any) error {
	switch typ {
	case engine.BlockDoc:
		return nil
	case engine.BlockQuote:
		return r.writeString("<blockquote>\n")
	case engine.BlockUL:
		return r.writeString("<ul>\n")
	case engine.BlockOL:
		d, _ := detail.(*engine.OLDetail)
		if d == nil || d.Start == 1 {
			return r.writeString("<ol>\n")
		}
		return r.writeString(`<ol start="` + strconv.FormatUint(uint64(d.Start), 10) + "\">\n")
	case engine.BlockLI:
		d, _ := detail.(*engine.LIDetail)
		if d == nil || !d.IsTask {
			return r.writeString("<li>")
		}
		s := `<li class="task-list-item"><input type="checkbox" class="task-list-item-checkbox" disabled`
		if d.TaskMark == 'x' || d.TaskMark == 'X' {
			s += " checked"
		}
		return r.writeString(s + r.voidEnd())
	case engine.BlockHR:
		return r.writeString("<hr" + r.voidEnd() + "\n")
	case engine.BlockH:
		return r.writeString("<h" + headingLevel(detail) + ">")
	case engine.BlockCode:
		if err := r.writeString("<pre><code"); err != nil {
			return err
		}
		if d, _ := detail.(*engine.CodeDetail); d != nil && len(d.Lang.Text) > 0 {
			if err := r.writeString(` class="language-`); err != nil {
				return err
			}
			if err := r.attribute(d.Lang); err != nil {
				return err
			}
			if err := r.writeString(`"`); err != nil {
				return err
			}
		}
		return r.writeString(">")
	case engine.BlockHTML:
		return nil
	case engine.BlockP:
		return r.writeString("<p>")
	case engine.BlockTable:
		return r.writeString("<table>\n")
	case engine.BlockTHead:
		return r.writeString("<thead>\n")
	case engine.BlockTBody:
		return r.writeString("<tbody>\n")
	case engine.BlockTR:
		return r.writeString("<tr>\n")
	case engine.BlockTH:
		return r.cell("th", detail)
	case engine.BlockTD:
		return r.cell("td", detail)
	}
	return nil
}

func (r *htmlRenderer) leaveBlock(typ engine.BlockType, detail any) error {
	switch typ {
	case engine.BlockQuote:
		return r.writeString("</blockquote>\n")
	case engine.BlockUL:
		return r.writeString("</ul>\n")
	case engine.BlockOL:
		return r.writeString("</ol>\n")
	case engine.BlockLI:
		return r.writeString("</li>\n")
	case engine.BlockH:
		return r.writeString("</h" + headingLevel(detail) + ">\n")
	case engine.BlockCode:
		return r.writeString("</code></pre>\n")
	case engine.BlockP:
		return r.writeString("</p>\n")
	case engine.BlockTable:
		return r.writeString("</table>\n")
	case engine.BlockTHead:
		return r.writeString("</thead>\n")
	case engine.BlockTBody:
		return r.writeString("</tbody>\n")
	case engine.BlockTR:
		return r.writeString("</tr>\n")
	case engine.BlockTH:
		return r.writeString("</th>\n")
	case engine.BlockTD:
		return r.writeString("</td>\n")
	}
	return nil
}

func headingLevel(detail any) string {
	level := 1
	if d, ok := detail.(*engine.HDetail); ok && d.Level >= 1 && d.Level <= 6 {
		level = d.Level
	}
	return strconv.Itoa(level)
}

func (r *htmlRenderer) cell(tag string, detail any) error {
	s := "<" + tag
	if d, ok := detail.(*engine.TDDetail); ok {
		switch d.Align {
		case engine.AlignLeft:
			s += ` align="left"`
		case engine.AlignCenter:
			s += ` align="center"`
		case engine.AlignRight:
			s += ` align="right"`
		}
	}
	return r.writeString(s + ">")
}

func (r *htmlRenderer) enterSpan(typ engine.SpanType, detail any) error {
	if r.imageNesting > 0 {
		if typ == engine.SpanImg {
			r.imageNesting++
		}
		return nil
	}

	switch typ {
	case engine.SpanEm:
		return r.writeString("<em>")
	case engine.SpanStrong:
		return r.writeString("<strong>")
	case engine.SpanU:
		return r.writeString("<u>")
	case engine.SpanDel:
		return r.writeString("<del>")
	case engine.SpanCode:
		return r.writeString("<code>")
	case engine.SpanLatexMath:
		return r.writeString("<x-equation>")
	case engine.SpanLatexMathDisplay:
		return r.writeString(`<x-equation type="display">`)
	case engine.SpanA:
		d, _ := detail.(*engine.ADetail)
		if d == nil {
			return r.writeString("<a>")
		}
		if err := r.writeString(`<a href="`); err != nil {
			return err
		}
		if err := r.url(d.Href); err != nil {
			return err
		}
		if len(d.Title.Text) > 0 {
			if err := r.writeString(`" title="`); err != nil {
				return err
			}
			if err := r.attribute(d.Title); err != nil {
				return err
			}
		}
		return r.writeString(`">`)
	case engine.SpanImg:
		d, _ := detail.(*engine.ImgDetail)
		if err := r.writeString(`<img src="`); err != nil {
			return err
		}
		if d != nil {
			if err := r.url(d.Src); err != nil {
				return err
			}
		}
		r.imageNesting++
		return r.writeString(`" alt="`)
	case engine.SpanWikiLink:
		d, _ := detail.(*engine.WikiLinkDetail)
		if err := r.writeString(`<x-wikilink data-target="`); err != nil {
			return err
		}
		if d != nil {
			if err := r.attribute(d.Target); err != nil {
				return err
			}
		}
		return r.writeString(`">`)
	}
	return nil
}

func (r *htmlRenderer) leaveSpan(typ engine.SpanType, detail any) error {
	if r.imageNesting > 0 {
		if typ != engine.SpanImg {
			return nil
		}
		r.imageNesting--
		if r.imageNesting > 0 {
			return nil
		}
		if err := r.writeString(`"`); err != nil {
			return err
		}
		if d, _ := detail.(*engine.ImgDetail); d != nil && len(d.Title.Text) > 0 {
			if err := r.writeString(` title="`); err != nil {
				return err
			}
			if err := r.attribute(d.Title); err != nil {
				return err
			}
			if err := r.writeString(`"`); err != nil {
				return err
			}
		}
		return r.writeString(r.voidEnd())
	}

	switch typ {
	case engine.SpanEm:
		return r.writeString("</em>")
	case engine.SpanStrong:
		return r.writeString("</strong>")
	case engine.SpanU:
		return r.writeString("</u>")
	case engine.SpanDel:
		return r.writeString("</del>")
	case engine.SpanCode:
		return r.writeString("</code>")
	case engine.SpanLatexMath, engine.SpanLatexMathDisplay:
		return r.writeString("</x-equation>")
	case engine.SpanA:
		return r.writeString("</a>")
	case engine.SpanWikiLink:
		return r.writeString("</x-wikilink>")
	}
	return nil
}

func (r *htmlRenderer) text(typ engine.TextType, text []byte) error {
	switch typ {
	case engine.TextNullChar:
		return r.write(replacementChar)
	case engine.TextBR:
		if r.imageNesting > 0 {
			return r.writeString(" ")
		}
		return r.writeString("<br" + r.voidEnd() + "\n")
	case engine.TextSoftBR:
		if r.imageNesting > 0 {
			return r.writeString(" ")
		}
		return r.writeString("\n")
	case engine.TextHTML:
		return r.write(text)
	case engine.TextEntity:
		return r.entity(text)
	default:
		return r.writeEscaped(text)
	}
}

func (r *htmlRenderer) entity(text []byte) error {
	if r.flags&FlagVerbatimEntities != 0 {
		return r.write(text)
	}
	decoded := html.UnescapeString(string(text))
	if decoded == string(text) {
		return r.writeEscaped(text)
	}
	if decoded == "\x00" {
		return r.write(replacementChar)
	}
	return r.writeEscaped([]byte(decoded))
}

// attribute writes attribute text with entities resolved.
func (r *htmlRenderer) attribute(attr engine.Attribute) error {
	return forEachSubRun(attr, func(typ engine.TextType, text []byte) error {
		switch typ {
		case engine.TextNullChar:
			return r.write(replacementChar)
		case engine.TextEntity:
			return r.entity(text)
		default:
			return r.writeEscaped(text)
		}
	})
}

func (r *htmlRenderer) url(attr engine.Attribute) error {
	return forEachSubRun(attr, func(typ engine.TextType, text []byte) error {
		switch typ {
		case engine.TextNullChar:
			return r.writeURL(replacementChar)
		case engine.TextEntity:
			if r.flags&FlagVerbatimEntities != 0 {
				return r.write(text)
			}
			return r.writeURL([]byte(html.UnescapeString(string(text))))
		default:
			return r.writeURL(text)
		}
	})
}

func forEachSubRun(attr engine.Attribute, fn func(engine.TextType, []byte) error) error {
	for i, typ := range attr.SubstrTypes {
		if i+1 >= len(attr.SubstrOffsets) {
			break
		}
		if err := fn(typ, attr.Text[attr.SubstrOffsets[i]:attr.SubstrOffsets[i+1]]); err != nil {
			return err
		}
	}
	return nil
}
