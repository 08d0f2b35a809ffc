package parser

// Handler receives parser events in document order. Returning
// ErrStopParsing, possibly wrapped, ends parsing without an error; any
// other error ends parsing and is returned from the Parse call as is.
type Handler interface {
	EnterBlock(typ BlockType, detail Detail) error
	LeaveBlock(typ BlockType, detail Detail) error
	EnterSpan(typ SpanType, detail Detail) error
	LeaveSpan(typ SpanType, detail Detail) error
	Text(typ TextType, text Text) error
}

// BaseHandler implements Handler with methods that do nothing. Embed it to
// handle only some events.
type BaseHandler struct{}

func (BaseHandler) EnterBlock(BlockType, Detail) error { return nil }
func (BaseHandler) LeaveBlock(BlockType, Detail) error { return nil }
func (BaseHandler) EnterSpan(SpanType, Detail) error   { return nil }
func (BaseHandler) LeaveSpan(SpanType, Detail) error   { return nil }
func (BaseHandler) Text(TextType, Text) error          { return nil }

// HandlerFuncs adapts plain functions to Handler. Nil fields ignore their
// events.
type HandlerFuncs struct {
	OnEnterBlock func(typ BlockType, detail Detail) error
	OnLeaveBlock func(typ BlockType, detail Detail) error
	OnEnterSpan  func(typ SpanType, detail Detail) error
	OnLeaveSpan  func(typ SpanType, detail Detail) error
	OnText       func(typ TextType, text Text) error
}

func (h HandlerFuncs) EnterBlock(typ BlockType, detail Detail) error {
	if h.OnEnterBlock == nil {
		return nil
	}
	return h.OnEnterBlock(typ, detail)
}

func (h HandlerFuncs) LeaveBlock(typ BlockType, detail Detail) error {
	if h.OnLeaveBlock == nil {
		return nil
	}
	return h.OnLeaveBlock(typ, detail)
}

func (h HandlerFuncs) EnterSpan(typ SpanType, detail Detail) error {
	if h.OnEnterSpan == nil {
		return nil
	}
	return h.OnEnterSpan(typ, detail)
}

func (h HandlerFuncs) LeaveSpan(typ SpanType, detail Detail) error {
	if h.OnLeaveSpan == nil {
		return nil
	}
	return h.OnLeaveSpan(typ, detail)
}

func (h HandlerFuncs) Text(typ TextType, text Text) error {
	if h.OnText == nil {
		return nil
	}
	return h.OnText(typ, text)
}
