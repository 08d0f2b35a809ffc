package parser

import (
	"github.com/rgonek/md4go/internal/engine"
)

// Detail is the per-element data passed with enter and leave events. The
// concrete type depends on the element kind; kinds without data get
// NoDetail.
type Detail interface {
	// Fields returns the detail as a name to value map. Keys that do not
	// apply to this element are left out.
	Fields() map[string]any
	isDetail()
}

// NoDetail is passed with elements that carry no data.
type NoDetail struct{}

func (NoDetail) Fields() map[string]any { return map[string]any{} }

// ULDetail is passed with BlockUL.
type ULDetail struct {
	IsTight bool
	Mark    rune
}

func (d ULDetail) Fields() map[string]any {
	return map[string]any{"is_tight": d.IsTight, "mark": d.Mark}
}

// OLDetail is passed with BlockOL.
type OLDetail struct {
	Start         uint
	IsTight       bool
	MarkDelimiter rune
}

func (d OLDetail) Fields() map[string]any {
	return map[string]any{
		"start":          d.Start,
		"is_tight":       d.IsTight,
		"mark_delimiter": d.MarkDelimiter,
	}
}

// TaskMark is the checkbox of a task list item. Offset is the byte offset
// of Mark in the input.
type TaskMark struct {
	Mark   rune
	Offset int
}

// LIDetail is passed with BlockLI. Task is nil unless the item is a task.
type LIDetail struct {
	Task *TaskMark
}

func (d LIDetail) Fields() map[string]any {
	if d.Task == nil {
		return map[string]any{"is_task": false}
	}
	return map[string]any{
		"is_task":          true,
		"task_mark":        d.Task.Mark,
		"task_mark_offset": d.Task.Offset,
	}
}

// HeadingDetail is passed with BlockH.
type HeadingDetail struct {
	Level int
}

func (d HeadingDetail) Fields() map[string]any {
	return map[string]any{"level": d.Level}
}

// CodeFence describes a fenced code block.
type CodeFence struct {
	Info AttributeRun
	Lang AttributeRun
	Char rune
}

// CodeDetail is passed with BlockCode. Fence is nil for indented code.
type CodeDetail struct {
	Fence *CodeFence
}

func (d CodeDetail) Fields() map[string]any {
	if d.Fence == nil {
		return map[string]any{}
	}
	return map[string]any{
		"info":       d.Fence.Info,
		"lang":       d.Fence.Lang,
		"fence_char": d.Fence.Char,
	}
}

// TableDetail is passed with BlockTable.
type TableDetail struct {
	ColCount     int
	HeadRowCount int
	BodyRowCount int
}

func (d TableDetail) Fields() map[string]any {
	return map[string]any{
		"col_count":      d.ColCount,
		"head_row_count": d.HeadRowCount,
		"body_row_count": d.BodyRowCount,
	}
}

// CellDetail is passed with BlockTH and BlockTD.
type CellDetail struct {
	Align Align
}

func (d CellDetail) Fields() map[string]any {
	return map[string]any{"align": d.Align}
}

// LinkDetail is passed with SpanA.
type LinkDetail struct {
	Href  AttributeRun
	Title AttributeRun
}

func (d LinkDetail) Fields() map[string]any {
	return map[string]any{"href": d.Href, "title": d.Title}
}

// ImageDetail is passed with SpanImg.
type ImageDetail struct {
	Src   AttributeRun
	Title AttributeRun
}

func (d ImageDetail) Fields() map[string]any {
	return map[string]any{"src": d.Src, "title": d.Title}
}

// WikiLinkDetail is passed with SpanWikiLink.
type WikiLinkDetail struct {
	Target AttributeRun
}

func (d WikiLinkDetail) Fields() map[string]any {
	return map[string]any{"target": d.Target}
}

func (NoDetail) isDetail()       {}
func (ULDetail) isDetail()       {}
func (OLDetail) isDetail()       {}
func (LIDetail) isDetail()       {}
func (HeadingDetail) isDetail()  {}
func (CodeDetail) isDetail()     {}
func (TableDetail) isDetail()    {}
func (CellDetail) isDetail()     {}
func (LinkDetail) isDetail()     {}
func (ImageDetail) isDetail()    {}
func (WikiLinkDetail) isDetail() {}

// blockDetail converts the engine's detail for a block element.
func blockDetail(typ engine.BlockType, raw any, newText textFunc) Detail {
	switch typ {
	case engine.BlockUL:
		if d, ok := raw.(*engine.ULDetail); ok {
			return ULDetail{IsTight: d.IsTight, Mark: rune(d.Mark)}
		}
	case engine.BlockOL:
		if d, ok := raw.(*engine.OLDetail); ok {
			return OLDetail{Start: d.Start, IsTight: d.IsTight, MarkDelimiter: rune(d.MarkDelimiter)}
		}
	case engine.BlockLI:
		if d, ok := raw.(*engine.LIDetail); ok {
			if !d.IsTask {
				return LIDetail{}
			}
			return LIDetail{Task: &TaskMark{Mark: rune(d.TaskMark), Offset: d.TaskMarkOffset}}
		}
	case engine.BlockH:
		if d, ok := raw.(*engine.HDetail); ok {
			return HeadingDetail{Level: d.Level}
		}
	case engine.BlockCode:
		if d, ok := raw.(*engine.CodeDetail); ok {
			if d.FenceChar == 0 {
				return CodeDetail{}
			}
			return CodeDetail{Fence: &CodeFence{
				Info: buildAttribute(d.Info, newText),
				Lang: buildAttribute(d.Lang, newText),
				Char: rune(d.FenceChar),
			}}
		}
	case engine.BlockTable:
		if d, ok := raw.(*engine.TableDetail); ok {
			return TableDetail{ColCount: d.ColCount, HeadRowCount: d.HeadRowCount, BodyRowCount: d.BodyRowCount}
		}
	case engine.BlockTH, engine.BlockTD:
		if d, ok := raw.(*engine.TDDetail); ok {
			return CellDetail{Align: Align(d.Align)}
		}
	}
	return NoDetail{}
}

// spanDetail converts the engine's detail for an inline element.
func spanDetail(typ engine.SpanType, raw any, newText textFunc) Detail {
	switch typ {
	case engine.SpanA:
		if d, ok := raw.(*engine.ADetail); ok {
			return LinkDetail{Href: buildAttribute(d.Href, newText), Title: buildAttribute(d.Title, newText)}
		}
	case engine.SpanImg:
		if d, ok := raw.(*engine.ImgDetail); ok {
			return ImageDetail{Src: buildAttribute(d.Src, newText), Title: buildAttribute(d.Title, newText)}
		}
	case engine.SpanWikiLink:
		if d, ok := raw.(*engine.WikiLinkDetail); ok {
			return WikiLinkDetail{Target: buildAttribute(d.Target, newText)}
		}
	}
	return NoDetail{}
}
