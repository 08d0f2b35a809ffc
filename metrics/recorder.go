// Package metrics records parse and render activity. Components take a
// Recorder and default to NoopRecorder when none is configured.
package metrics

import "time"

// Outcome labels the end state of one parse or render call.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeStopped  Outcome = "stopped"
	OutcomeFailed   Outcome = "failed"
	OutcomeRejected Outcome = "rejected"
)

// Path labels which bridge handled a document.
type Path string

const (
	PathParse  Path = "parse"
	PathRender Path = "render"
)

// Recorder receives observations from the parser and renderer. Methods may
// be called from many goroutines at once.
type Recorder interface {
	IncDocument(path Path, outcome Outcome)
	AddEvents(kind string, n int)
	ObserveOutputBytes(n int)
	ObserveDuration(path Path, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncDocument(Path, Outcome) {}

func (NoopRecorder) AddEvents(string, int) {}

func (NoopRecorder) ObserveOutputBytes(int) {}

func (NoopRecorder) ObserveDuration(Path, time.Duration) {}
