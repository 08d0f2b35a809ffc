package parser

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/md4go/internal/engine"
	"github.com/rgonek/md4go/metrics"
	"github.com/rgonek/md4go/options"
)

type event struct {
	name   string
	detail Detail
	text   Text
}

// recordingHandler keeps every event and optionally fails at one of them.
type recordingHandler struct {
	events []event
	failAt int
	err    error
}

func (h *recordingHandler) add(e event) error {
	h.events = append(h.events, e)
	if h.err != nil && len(h.events) == h.failAt {
		return h.err
	}
	return nil
}

func (h *recordingHandler) EnterBlock(typ BlockType, d Detail) error {
	return h.add(event{name: "enter " + typ.String(), detail: d})
}

func (h *recordingHandler) LeaveBlock(typ BlockType, d Detail) error {
	return h.add(event{name: "leave " + typ.String(), detail: d})
}

func (h *recordingHandler) EnterSpan(typ SpanType, d Detail) error {
	return h.add(event{name: "enter " + typ.String(), detail: d})
}

func (h *recordingHandler) LeaveSpan(typ SpanType, d Detail) error {
	return h.add(event{name: "leave " + typ.String(), detail: d})
}

func (h *recordingHandler) Text(typ TextType, text Text) error {
	return h.add(event{name: "text " + typ.String(), text: text})
}

func (h *recordingHandler) names() []string {
	names := make([]string, len(h.events))
	for i, e := range h.events {
		names[i] = e.name
	}
	return names
}

func (h *recordingHandler) detail(name string) Detail {
	for _, e := range h.events {
		if e.name == name {
			return e.detail
		}
	}
	return nil
}

func TestParseStringEvents(t *testing.T) {
	h := &recordingHandler{}
	require.NoError(t, New(Config{}).ParseString("Hello *world*", h))
	assert.Equal(t, []string{
		"enter doc", "enter p", "text normal", "enter em", "text normal", "leave em", "leave p", "leave doc",
	}, h.names())
	assert.Equal(t, "Hello ", h.events[2].text.String())
	assert.False(t, h.events[2].text.IsBytes())
}

func TestParseBytesMatchesParseString(t *testing.T) {
	input := "# Title\n\n- [a](b \"c &amp; d\")\n- `code`\n\n```go\nx\n```\n"
	p := New(Config{Options: options.ParserOptions{DialectGitHub: true}})

	hs := &recordingHandler{}
	hb := &recordingHandler{}
	require.NoError(t, p.ParseString(input, hs))
	require.NoError(t, p.ParseBytes([]byte(input), hb))

	require.Equal(t, hs.names(), hb.names())
	for i := range hs.events {
		assert.Equal(t, hs.events[i].text.String(), hb.events[i].text.String())
		if hb.events[i].name[:4] == "text" {
			assert.True(t, hb.events[i].text.IsBytes())
			assert.False(t, hs.events[i].text.IsBytes())
		}
	}

	link, ok := hb.detail("enter a").(LinkDetail)
	require.True(t, ok)
	require.NotEmpty(t, link.Title)
	assert.True(t, link.Title[0].Text.IsBytes())
}

func TestParseNestingIsBalanced(t *testing.T) {
	input := "> # Quote\n>\n> 1. one\n> 2. **two _three_**\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	depth := 0
	h := HandlerFuncs{
		OnEnterBlock: func(BlockType, Detail) error { depth++; return nil },
		OnLeaveBlock: func(BlockType, Detail) error { depth--; return nil },
		OnEnterSpan:  func(SpanType, Detail) error { depth++; return nil },
		OnLeaveSpan:  func(SpanType, Detail) error { depth--; return nil },
		OnText: func(TextType, Text) error {
			if depth <= 0 {
				return errors.New("text outside of document")
			}
			return nil
		},
	}
	require.NoError(t, New(Config{Options: options.ParserOptions{Tables: true}}).ParseString(input, h))
	assert.Equal(t, 0, depth)
}

func TestParseStopAfterEvents(t *testing.T) {
	input := "# a\n\nb *c* d\n\n- e\n- f\n"
	full := &recordingHandler{}
	require.NoError(t, New(Config{}).ParseString(input, full))
	require.Greater(t, len(full.events), 6)

	for k := 1; k <= len(full.events); k++ {
		t.Run(fmt.Sprint(k), func(t *testing.T) {
			h := &recordingHandler{failAt: k, err: ErrStopParsing}
			require.NoError(t, New(Config{}).ParseString(input, h))
			assert.Len(t, h.events, k)
			assert.Equal(t, full.names()[:k], h.names())
		})
	}
}

func TestParseStopWrapped(t *testing.T) {
	h := &recordingHandler{failAt: 2, err: fmt.Errorf("done early: %w", ErrStopParsing)}
	require.NoError(t, New(Config{}).ParseString("text", h))
	assert.Len(t, h.events, 2)
}

type handlerFailure struct{ msg string }

func (e *handlerFailure) Error() string { return e.msg }

func TestParseHandlerFailureIsReturnedAsIs(t *testing.T) {
	failure := &handlerFailure{msg: "handler broke"}
	h := &recordingHandler{failAt: 3, err: failure}

	err := New(Config{}).ParseString("Hello", h)
	require.Error(t, err)
	assert.Same(t, failure, err)
	assert.Len(t, h.events, 3)

	var pe *ParseError
	assert.False(t, errors.As(err, &pe))
}

func TestParseEngineFailure(t *testing.T) {
	original := parseFunc
	t.Cleanup(func() { parseFunc = original })

	internal := fmt.Errorf("%w: out of memory", engine.ErrInternal)
	parseFunc = func([]byte, *engine.Parser) error { return internal }

	err := New(Config{}).ParseString("x", &recordingHandler{})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "parse", pe.Op)
	assert.ErrorIs(t, err, engine.ErrInternal)
	assert.Contains(t, err.Error(), "could not parse markdown")
}

func TestParseHandlerOutcomeBeatsEngineFailure(t *testing.T) {
	original := parseFunc
	t.Cleanup(func() { parseFunc = original })

	parseFunc = func(_ []byte, p *engine.Parser) error {
		_ = p.Text(engine.TextNormal, []byte("x"))
		return fmt.Errorf("%w: late failure", engine.ErrInternal)
	}

	failure := &handlerFailure{msg: "first"}
	err := New(Config{}).ParseString("x", HandlerFuncs{OnText: func(TextType, Text) error { return failure }})
	assert.Same(t, failure, err)

	err = New(Config{}).ParseString("x", HandlerFuncs{OnText: func(TextType, Text) error { return ErrStopParsing }})
	assert.NoError(t, err)
}

func TestParseNilHandler(t *testing.T) {
	called := false
	original := parseFunc
	t.Cleanup(func() { parseFunc = original })
	parseFunc = func([]byte, *engine.Parser) error {
		called = true
		return nil
	}

	require.ErrorIs(t, New(Config{}).ParseString("x", nil), ErrNilHandler)
	assert.False(t, called)
}

func TestLinkAttributes(t *testing.T) {
	h := &recordingHandler{}
	require.NoError(t, New(Config{}).ParseString(`[x](/url "T &amp; U") [y](/z)`, h))

	var links []LinkDetail
	for _, e := range h.events {
		if d, ok := e.detail.(LinkDetail); ok && e.name == "enter a" {
			links = append(links, d)
		}
	}
	require.Len(t, links, 2)

	title := links[0].Title
	require.Len(t, title, 3)
	assert.Equal(t, []TextType{TextNormal, TextEntity, TextNormal}, []TextType{title[0].Kind, title[1].Kind, title[2].Kind})
	assert.Equal(t, "&amp;", title[1].Text.String())
	assert.Equal(t, "T &amp; U", title.String())
	assert.Equal(t, "/url", links[0].Href.String())

	assert.Nil(t, links[1].Title)
	assert.Equal(t, map[string]any{"href": links[1].Href, "title": AttributeRun(nil)}, links[1].Fields())
}

func TestCodeDetails(t *testing.T) {
	t.Run("fenced", func(t *testing.T) {
		h := &recordingHandler{}
		require.NoError(t, New(Config{}).ParseString("```python extra\nprint(1)\n```\n", h))
		code, ok := h.detail("enter code").(CodeDetail)
		require.True(t, ok)
		require.NotNil(t, code.Fence)
		fields := code.Fields()
		assert.Equal(t, '`', fields["fence_char"])
		assert.Equal(t, "python extra", fields["info"].(AttributeRun).String())
		assert.Equal(t, "python", fields["lang"].(AttributeRun).String())
	})

	t.Run("fenced without info", func(t *testing.T) {
		h := &recordingHandler{}
		require.NoError(t, New(Config{}).ParseString("~~~\nx\n~~~\n", h))
		code := h.detail("enter code").(CodeDetail)
		require.NotNil(t, code.Fence)
		assert.Nil(t, code.Fence.Info)
		assert.Nil(t, code.Fence.Lang)
		assert.Equal(t, '~', code.Fence.Char)
	})

	t.Run("indented", func(t *testing.T) {
		h := &recordingHandler{}
		require.NoError(t, New(Config{}).ParseString("    code\n", h))
		code := h.detail("enter code").(CodeDetail)
		assert.Nil(t, code.Fence)
		assert.Empty(t, code.Fields())
		assert.Contains(t, h.names(), "text code")
	})
}

func TestListItemDetails(t *testing.T) {
	input := "- [x] done\n- plain\n"
	h := &recordingHandler{}
	require.NoError(t, New(Config{Options: options.ParserOptions{TaskLists: true}}).ParseString(input, h))

	var items []LIDetail
	for _, e := range h.events {
		if e.name == "enter li" {
			items = append(items, e.detail.(LIDetail))
		}
	}
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{"is_task": true, "task_mark": 'x', "task_mark_offset": 3}, items[0].Fields())
	assert.Equal(t, map[string]any{"is_task": false}, items[1].Fields())

	list := h.detail("enter ul").(ULDetail)
	assert.Equal(t, map[string]any{"is_tight": true, "mark": '-'}, list.Fields())
}

func TestOrderedListDetail(t *testing.T) {
	h := &recordingHandler{}
	require.NoError(t, New(Config{}).ParseString("7. seven\n", h))
	ol := h.detail("enter ol").(OLDetail)
	assert.Equal(t, map[string]any{"start": uint(7), "is_tight": true, "mark_delimiter": '.'}, ol.Fields())
}

func TestTableDetails(t *testing.T) {
	h := &recordingHandler{}
	input := "| a | b |\n|:-:|--:|\n| 1 | 2 |\n"
	require.NoError(t, New(Config{Options: options.ParserOptions{Tables: true}}).ParseString(input, h))

	table := h.detail("enter table").(TableDetail)
	assert.Equal(t, TableDetail{ColCount: 2, HeadRowCount: 1, BodyRowCount: 1}, table)

	var aligns []Align
	for _, e := range h.events {
		if e.name == "enter th" {
			aligns = append(aligns, e.detail.(CellDetail).Align)
		}
	}
	assert.Equal(t, []Align{AlignCenter, AlignRight}, aligns)
	assert.Equal(t, NoDetail{}, h.detail("enter thead"))
}

func TestHeadingAndWikiLinkDetails(t *testing.T) {
	h := &recordingHandler{}
	require.NoError(t, New(Config{Options: options.ParserOptions{WikiLinks: true}}).ParseString("### [[Page|see]]\n", h))
	assert.Equal(t, HeadingDetail{Level: 3}, h.detail("enter h"))
	wl := h.detail("enter wikilink").(WikiLinkDetail)
	assert.Equal(t, "Page", wl.Target.String())
}

func TestBuildAttribute(t *testing.T) {
	assert.Nil(t, buildAttribute(engine.Attribute{}, stringFromBytes))

	raw := engine.Attribute{
		Text:          []byte("a&lt;b\x00"),
		SubstrTypes:   []engine.TextType{engine.TextNormal, engine.TextEntity, engine.TextNormal, engine.TextNullChar},
		SubstrOffsets: []int{0, 1, 5, 6, 7},
	}
	run := buildAttribute(raw, BytesText)
	require.Len(t, run, 4)
	assert.Equal(t, TextNullChar, run[3].Kind)
	assert.True(t, bytes.Equal(raw.Text, run.Text().Bytes()))
	assert.True(t, run.Text().IsBytes())
}

func TestAbsentAttributeText(t *testing.T) {
	var run AttributeRun
	txt := run.Text()
	assert.Equal(t, 0, txt.Len())
	assert.False(t, txt.IsBytes())
	assert.Empty(t, txt.Bytes())

	run = buildAttribute(engine.Attribute{Text: []byte("x"), SubstrTypes: []engine.TextType{engine.TextNormal}, SubstrOffsets: []int{0, 1}}, BytesText)
	assert.True(t, run.Text().IsBytes())
}

func TestTextForms(t *testing.T) {
	src := []byte("abc")
	b := BytesText(src)
	src[0] = 'x'
	assert.Equal(t, "abc", b.String())
	assert.Equal(t, 3, b.Len())
	assert.True(t, b.IsBytes())

	s := StringText("héllo")
	assert.Equal(t, []byte("héllo"), s.Bytes())
	assert.Equal(t, 6, s.Len())
	assert.False(t, s.IsBytes())
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "ul", BlockUL.String())
	assert.Equal(t, "td", BlockTD.String())
	assert.Equal(t, "latexmath_display", SpanLatexMathDisplay.String())
	assert.Equal(t, "softbr", TextSoftBR.String())
	assert.Equal(t, "default", AlignDefault.String())
	assert.Equal(t, "BlockType(99)", BlockType(99).String())
}

func TestBaseHandlerEmbedding(t *testing.T) {
	var headings []string
	h := &headingCollector{out: &headings}
	require.NoError(t, New(Config{}).ParseString("# One\n\ntext\n\n## Two\n", h))
	assert.Equal(t, []string{"One", "Two"}, headings)
}

type headingCollector struct {
	BaseHandler
	inHeading bool
	out       *[]string
}

func (h *headingCollector) EnterBlock(typ BlockType, _ Detail) error {
	h.inHeading = typ == BlockH
	return nil
}

func (h *headingCollector) Text(_ TextType, text Text) error {
	if h.inHeading {
		*h.out = append(*h.out, text.String())
	}
	return nil
}

func TestParserConcurrentUse(t *testing.T) {
	p := New(Config{Options: options.ParserOptions{DialectGitHub: true}})
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := &recordingHandler{}
			errs[i] = p.ParseString(strings.Repeat("para *x*\n\n", i+1), h)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []metrics.Outcome
	events   map[string]int
}

func (r *countingRecorder) IncDocument(_ metrics.Path, outcome metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *countingRecorder) AddEvents(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string]int{}
	}
	r.events[kind] += n
}

func TestParseRecordsMetricsAndLogs(t *testing.T) {
	rec := &countingRecorder{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := New(Config{Recorder: rec, Logger: logger})

	require.NoError(t, p.ParseString("hi", &recordingHandler{}))
	require.NoError(t, p.ParseString("hi", &recordingHandler{failAt: 1, err: ErrStopParsing}))
	require.ErrorIs(t, p.ParseString("hi", nil), ErrNilHandler)

	assert.Equal(t, []metrics.Outcome{metrics.OutcomeSuccess, metrics.OutcomeStopped, metrics.OutcomeRejected}, rec.outcomes)
	assert.Equal(t, 1, rec.events["text"])
	assert.Equal(t, 3, rec.events["enter_block"])
	assert.Contains(t, logs.String(), "parse stopped by handler")
}
