// Package options translates named parser and renderer options into the
// bitmasks understood by the Markdown engine.
package options

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgonek/md4go/internal/engine"
	"github.com/rgonek/md4go/internal/mdhtml"
)

// ParserFlags is a bitmask of parser options.
type ParserFlags uint32

const (
	CollapseWhitespace       = ParserFlags(engine.FlagCollapseWhitespace)
	PermissiveATXHeaders     = ParserFlags(engine.FlagPermissiveATXHeaders)
	PermissiveURLAutolinks   = ParserFlags(engine.FlagPermissiveURLAutolinks)
	PermissiveEmailAutolinks = ParserFlags(engine.FlagPermissiveEmailAutolinks)
	NoIndentedCodeBlocks     = ParserFlags(engine.FlagNoIndentedCodeBlocks)
	NoHTMLBlocks             = ParserFlags(engine.FlagNoHTMLBlocks)
	NoHTMLSpans              = ParserFlags(engine.FlagNoHTMLSpans)
	Tables                   = ParserFlags(engine.FlagTables)
	Strikethrough            = ParserFlags(engine.FlagStrikethrough)
	PermissiveWWWAutolinks   = ParserFlags(engine.FlagPermissiveWWWAutolinks)
	TaskLists                = ParserFlags(engine.FlagTaskLists)
	LatexMathSpans           = ParserFlags(engine.FlagLatexMathSpans)
	WikiLinks                = ParserFlags(engine.FlagWikiLinks)
	Underline                = ParserFlags(engine.FlagUnderline)

	PermissiveAutolinks = ParserFlags(engine.FlagPermissiveAutolinks)
	NoHTML              = ParserFlags(engine.FlagNoHTML)

	DialectCommonMark = ParserFlags(engine.DialectCommonMark)
	DialectGitHub     = ParserFlags(engine.DialectGitHub)
)

// RendererFlags is a bitmask of HTML renderer options.
type RendererFlags uint32

const (
	Debug            = RendererFlags(mdhtml.FlagDebug)
	VerbatimEntities = RendererFlags(mdhtml.FlagVerbatimEntities)
	SkipUTF8BOM      = RendererFlags(mdhtml.FlagSkipUTF8BOM)
	XHTML            = RendererFlags(mdhtml.FlagXHTML)
)

var parserFlagNames = map[string]ParserFlags{
	"collapse_whitespace":        CollapseWhitespace,
	"permissive_atx_headers":     PermissiveATXHeaders,
	"permissive_url_autolinks":   PermissiveURLAutolinks,
	"permissive_email_autolinks": PermissiveEmailAutolinks,
	"no_indented_code_blocks":    NoIndentedCodeBlocks,
	"no_html_blocks":             NoHTMLBlocks,
	"no_html_spans":              NoHTMLSpans,
	"tables":                     Tables,
	"strikethrough":              Strikethrough,
	"permissive_www_autolinks":   PermissiveWWWAutolinks,
	"tasklists":                  TaskLists,
	"latex_math_spans":           LatexMathSpans,
	"wikilinks":                  WikiLinks,
	"underline":                  Underline,
	"permissive_autolinks":       PermissiveAutolinks,
	"no_html":                    NoHTML,
	"dialect_github":             DialectGitHub,
}

// singleParserFlags lists the one-bit flags in bit order for Names.
var singleParserFlags = []struct {
	name string
	flag ParserFlags
}{
	{"collapse_whitespace", CollapseWhitespace},
	{"permissive_atx_headers", PermissiveATXHeaders},
	{"permissive_url_autolinks", PermissiveURLAutolinks},
	{"permissive_email_autolinks", PermissiveEmailAutolinks},
	{"no_indented_code_blocks", NoIndentedCodeBlocks},
	{"no_html_blocks", NoHTMLBlocks},
	{"no_html_spans", NoHTMLSpans},
	{"tables", Tables},
	{"strikethrough", Strikethrough},
	{"permissive_www_autolinks", PermissiveWWWAutolinks},
	{"tasklists", TaskLists},
	{"latex_math_spans", LatexMathSpans},
	{"wikilinks", WikiLinks},
	{"underline", Underline},
}

var rendererFlagNames = map[string]RendererFlags{
	"debug":             Debug,
	"verbatim_entities": VerbatimEntities,
	"skip_utf8_bom":     SkipUTF8BOM,
	"xhtml":             XHTML,
}

// normalizeName folds "NoHTML", "no-html" and "no_html" to one key.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
	return strings.ToLower(name)
}

func lookup[F any](names map[string]F, name string) (F, bool) {
	key := normalizeName(name)
	for candidate, flag := range names {
		if normalizeName(candidate) == key {
			return flag, true
		}
	}
	var zero F
	return zero, false
}

// ParseParserFlag resolves a parser flag name such as "tables",
// "no-html" or "PermissiveAutolinks".
func ParseParserFlag(name string) (ParserFlags, error) {
	if f, ok := lookup(parserFlagNames, name); ok {
		return f, nil
	}
	return 0, fmt.Errorf("invalid parser flag %q", name)
}

// ParseRendererFlag resolves a renderer flag name such as "xhtml".
func ParseRendererFlag(name string) (RendererFlags, error) {
	if f, ok := lookup(rendererFlagNames, name); ok {
		return f, nil
	}
	return 0, fmt.Errorf("invalid renderer flag %q", name)
}

// ParserFlagNames returns every accepted parser flag name, sorted.
func ParserFlagNames() []string {
	names := make([]string, 0, len(parserFlagNames))
	for name := range parserFlagNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names lists the single-bit flags set in f, in bit order.
func (f ParserFlags) Names() []string {
	var names []string
	for _, s := range singleParserFlags {
		if f&s.flag != 0 {
			names = append(names, s.name)
		}
	}
	return names
}

// Names lists the flags set in f, sorted.
func (f RendererFlags) Names() []string {
	var names []string
	for name, flag := range rendererFlagNames {
		if f&flag != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ParserOptions selects parser behavior. Flags is a raw bitmask; each true
// boolean adds its bits on top. A false boolean never clears a bit set
// elsewhere.
type ParserOptions struct {
	Flags ParserFlags

	CollapseWhitespace       bool
	PermissiveATXHeaders     bool
	PermissiveURLAutolinks   bool
	PermissiveEmailAutolinks bool
	NoIndentedCodeBlocks     bool
	NoHTMLBlocks             bool
	NoHTMLSpans              bool
	Tables                   bool
	Strikethrough            bool
	PermissiveWWWAutolinks   bool
	TaskLists                bool
	LatexMathSpans           bool
	WikiLinks                bool
	Underline                bool

	PermissiveAutolinks bool
	NoHTML              bool
	DialectGitHub       bool
}

// Mask returns the combined bitmask. Unknown bits in Flags are kept.
func (o ParserOptions) Mask() ParserFlags {
	mask := o.Flags
	set := func(enabled bool, f ParserFlags) {
		if enabled {
			mask |= f
		}
	}

	set(o.CollapseWhitespace, CollapseWhitespace)
	set(o.PermissiveATXHeaders, PermissiveATXHeaders)
	set(o.PermissiveURLAutolinks, PermissiveURLAutolinks)
	set(o.PermissiveEmailAutolinks, PermissiveEmailAutolinks)
	set(o.NoIndentedCodeBlocks, NoIndentedCodeBlocks)
	set(o.NoHTMLBlocks, NoHTMLBlocks)
	set(o.NoHTMLSpans, NoHTMLSpans)
	set(o.Tables, Tables)
	set(o.Strikethrough, Strikethrough)
	set(o.PermissiveWWWAutolinks, PermissiveWWWAutolinks)
	set(o.TaskLists, TaskLists)
	set(o.LatexMathSpans, LatexMathSpans)
	set(o.WikiLinks, WikiLinks)
	set(o.Underline, Underline)
	set(o.PermissiveAutolinks, PermissiveAutolinks)
	set(o.NoHTML, NoHTML)
	set(o.DialectGitHub, DialectGitHub)
	return mask
}

// Engine returns the mask in the engine's representation.
func (o ParserOptions) Engine() engine.Flag {
	return engine.Flag(o.Mask())
}

// RendererOptions selects HTML renderer behavior, combined the same way as
// ParserOptions.
type RendererOptions struct {
	Flags RendererFlags

	Debug            bool
	VerbatimEntities bool
	SkipUTF8BOM      bool
	XHTML            bool
}

// Mask returns the combined bitmask.
func (o RendererOptions) Mask() RendererFlags {
	mask := o.Flags
	if o.Debug {
		mask |= Debug
	}
	if o.VerbatimEntities {
		mask |= VerbatimEntities
	}
	if o.SkipUTF8BOM {
		mask |= SkipUTF8BOM
	}
	if o.XHTML {
		mask |= XHTML
	}
	return mask
}

// Engine returns the mask in the HTML renderer's representation.
func (o RendererOptions) Engine() mdhtml.Flag {
	return mdhtml.Flag(o.Mask())
}
