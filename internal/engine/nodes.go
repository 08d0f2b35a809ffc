package engine

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
)

// KindUnderline is the node kind of Underline.
var KindUnderline = ast.NewNodeKind("Underline")

// Underline is an inline node for text wrapped in single underscores when
// underline parsing is enabled.
type Underline struct {
	ast.BaseInline
}

// Kind implements ast.Node.
func (n *Underline) Kind() ast.NodeKind {
	return KindUnderline
}

// Dump implements ast.Node.
func (n *Underline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// NewUnderline returns a new Underline node.
func NewUnderline() *Underline {
	return &Underline{}
}

// KindMath is the node kind of Math.
var KindMath = ast.NewNodeKind("Math")

// Math is an inline LaTeX equation. Display is set for $$...$$.
type Math struct {
	ast.BaseInline
	Display bool
}

// Kind implements ast.Node.
func (n *Math) Kind() ast.NodeKind {
	return KindMath
}

// Dump implements ast.Node.
func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": fmt.Sprintf("%v", n.Display),
	}, nil)
}

// NewMath returns a new Math node.
func NewMath(display bool) *Math {
	return &Math{Display: display}
}

// KindWikiLink is the node kind of WikiLink.
var KindWikiLink = ast.NewNodeKind("WikiLink")

// WikiLink is a [[target]] or [[target|label]] link. Its children hold the
// label.
type WikiLink struct {
	ast.BaseInline
	Target []byte
}

// Kind implements ast.Node.
func (n *WikiLink) Kind() ast.NodeKind {
	return KindWikiLink
}

// Dump implements ast.Node.
func (n *WikiLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Target": string(n.Target),
	}, nil)
}

// NewWikiLink returns a new WikiLink node pointing at target.
func NewWikiLink(target []byte) *WikiLink {
	return &WikiLink{Target: target}
}
