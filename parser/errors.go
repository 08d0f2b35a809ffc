package parser

import (
	"errors"
	"fmt"
)

// ErrStopParsing is returned by a Handler to end parsing early. The Parse
// call then returns nil.
var ErrStopParsing = errors.New("stop parsing")

// ErrNilHandler is returned when Parse is called without a handler.
var ErrNilHandler = errors.New("nil handler")

// ParseError reports that the Markdown engine itself failed.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: could not parse markdown: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
