package driver

import "time"

// Stage describes a step of directory analysis.
type Stage string

const (
	StageLoad  Stage = "load"
	StageParse Stage = "parse"
	StageCheck Stage = "check"
	// StageFix is emitted by callers that apply proposals after analysis.
	StageFix Stage = "fix"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChanSink forwards events to a channel; the ui progress model reads it.
type ChanSink chan Event

func (c ChanSink) OnEvent(ev Event) { c <- ev }

func emit(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
