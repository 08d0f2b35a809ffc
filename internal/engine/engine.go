// Package engine is a push-style Markdown parser. It parses a document and
// reports its structure as a sequence of enter, leave and text callbacks.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrInternal reports a failure inside the engine itself, as opposed to an
// error returned by a callback.
var ErrInternal = errors.New("markdown engine failure")

const knownFlags = FlagCollapseWhitespace | FlagPermissiveATXHeaders | FlagPermissiveAutolinks |
	FlagNoIndentedCodeBlocks | FlagNoHTML | FlagTables | FlagStrikethrough | FlagTaskLists |
	FlagLatexMathSpans | FlagWikiLinks | FlagUnderline

// Parser carries the options and callbacks of a Parse call. Nil callbacks
// are skipped.
type Parser struct {
	Flags Flag

	EnterBlock func(typ BlockType, detail any) error
	LeaveBlock func(typ BlockType, detail any) error
	EnterSpan  func(typ SpanType, detail any) error
	LeaveSpan  func(typ SpanType, detail any) error
	Text       func(typ TextType, text []byte) error

	// DebugLog receives diagnostic messages when set.
	DebugLog func(msg string)
}

// Parse parses input and reports it through p. The first callback error
// stops the walk and is returned unchanged. Failures of the engine itself
// wrap ErrInternal.
func Parse(input []byte, p *Parser) error {
	if p == nil {
		return fmt.Errorf("%w: nil parser", ErrInternal)
	}

	root, err := parseTree(input, p)
	if err != nil {
		return err
	}

	w := &walker{
		source:   input,
		p:        p,
		collapse: p.Flags.Has(FlagCollapseWhitespace),
		rawText:  TextCode,
	}
	return w.node(root)
}

func parseTree(input []byte, p *Parser) (root ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	md := markdownFor(p.Flags)
	root = md.Parser().Parse(text.NewReader(input))
	p.debugf("parsed %d bytes with flags %#x", len(input), uint32(p.Flags&knownFlags))
	return root, nil
}

func (p *Parser) debugf(format string, args ...any) {
	if p.DebugLog != nil {
		p.DebugLog(fmt.Sprintf(format, args...))
	}
}

var markdowns sync.Map // Flag -> goldmark.Markdown

// markdownFor returns the goldmark instance configured for flags. Instances
// are immutable after construction and shared between calls.
func markdownFor(flags Flag) goldmark.Markdown {
	key := flags & knownFlags
	if md, ok := markdowns.Load(key); ok {
		return md.(goldmark.Markdown)
	}
	md, _ := markdowns.LoadOrStore(key, newMarkdown(key))
	return md.(goldmark.Markdown)
}

func newMarkdown(flags Flag) goldmark.Markdown {
	blocks := []util.PrioritizedValue{
		util.Prioritized(parser.NewSetextHeadingParser(), 100),
		util.Prioritized(parser.NewThematicBreakParser(), 200),
		util.Prioritized(parser.NewListParser(), 300),
		util.Prioritized(parser.NewListItemParser(), 400),
		util.Prioritized(parser.NewATXHeadingParser(), 600),
		util.Prioritized(newFenceRecorder(parser.NewFencedCodeBlockParser()), 700),
		util.Prioritized(parser.NewBlockquoteParser(), 800),
	}
	if flags.Has(FlagNoIndentedCodeBlocks) {
		blocks = append(blocks, util.Prioritized(newIndentedParagraphParser(), 1000))
	} else {
		blocks = append(blocks,
			util.Prioritized(parser.NewCodeBlockParser(), 500),
			util.Prioritized(parser.NewParagraphParser(), 1000))
	}
	if !flags.Has(FlagNoHTMLBlocks) {
		blocks = append(blocks, util.Prioritized(parser.NewHTMLBlockParser(), 900))
	}

	inlines := []util.PrioritizedValue{
		util.Prioritized(parser.NewCodeSpanParser(), 100),
		util.Prioritized(parser.NewLinkParser(), 200),
		util.Prioritized(parser.NewAutoLinkParser(), 300),
		util.Prioritized(parser.NewEmphasisParser(), 500),
	}
	if !flags.Has(FlagNoHTMLSpans) {
		inlines = append(inlines, util.Prioritized(parser.NewRawHTMLParser(), 400))
	}

	p := parser.NewParser(
		parser.WithBlockParsers(blocks...),
		parser.WithInlineParsers(inlines...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
	return goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithExtensions(extensionsFor(flags)...),
	)
}

func extensionsFor(flags Flag) []goldmark.Extender {
	var exts []goldmark.Extender
	if flags.Has(FlagTables) {
		exts = append(exts, extension.Table)
	}
	if flags.Has(FlagStrikethrough) {
		exts = append(exts, extension.Strikethrough)
	}
	if flags.Has(FlagTaskLists) {
		exts = append(exts, extension.TaskList)
	}
	if flags&FlagPermissiveAutolinks != 0 {
		exts = append(exts, &permissiveAutolinks{flags: flags})
	}
	if flags.Has(FlagPermissiveATXHeaders) {
		exts = append(exts, permissiveATXHeadings{})
	}
	if flags.Has(FlagLatexMathSpans) {
		exts = append(exts, mathSpans{})
	}
	if flags.Has(FlagWikiLinks) {
		exts = append(exts, wikiLinks{})
	}
	if flags.Has(FlagUnderline) {
		exts = append(exts, underline{})
	}
	return exts
}

type permissiveAutolinks struct {
	flags Flag
}

func (e *permissiveAutolinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(newAutolinkFilter(extension.NewLinkifyParser(), e.flags), 999),
	))
}

type permissiveATXHeadings struct{}

func (permissiveATXHeadings) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(NewPermissiveATXHeadingParser(), 599),
	))
}

type mathSpans struct{}

func (mathSpans) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewMathParser(), 150),
	))
}

type wikiLinks struct{}

func (wikiLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewWikiLinkParser(), 199),
	))
}

type underline struct{}

func (underline) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewUnderlineParser(), 499),
	))
}
