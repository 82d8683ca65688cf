package session

import (
	"time"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
)

// State is the workflow state of a session
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the tagged session state. Result is set only in StateDone and
// Message only in StateError; RunID names the run that produced the state.
type Status struct {
	State   State
	RunID   string
	Result  *ocr.Result
	Message string
	Since   time.Time
}

// CanRun reports whether a run may be requested from this status
func (s Status) CanRun() bool {
	return s.State != StateProcessing
}

// Text is the status line shown next to the run button
func (s Status) Text() string {
	switch s.State {
	case StateProcessing:
		return "Processing …"
	case StateDone:
		return "Done"
	case StateError:
		return "Error: " + s.Message
	default:
		return ""
	}
}

// Event is an input to the state machine
type Event interface {
	isEvent()
}

// FileSelected is a new file acquisition
type FileSelected struct {
	At time.Time
}

// RunRequested asks to start a run. HasFile reports whether a file is selected.
type RunRequested struct {
	RunID   string
	HasFile bool
	At      time.Time
}

// RunSucceeded delivers the normalized result of a run
type RunSucceeded struct {
	RunID  string
	Result *ocr.Result
	At     time.Time
}

// RunFailed delivers the failure message of a run
type RunFailed struct {
	RunID   string
	Message string
	At      time.Time
}

func (FileSelected) isEvent() {}
func (RunRequested) isEvent() {}
func (RunSucceeded) isEvent() {}
func (RunFailed) isEvent()    {}

// Reduce applies an event to a status and returns the next status. Events
// that are not allowed in the current state leave it unchanged:
//   - a run request while processing, or without a file
//   - a file selection while processing
//   - an outcome for any run other than the one in progress
func Reduce(s Status, ev Event) Status {
	switch e := ev.(type) {
	case FileSelected:
		if s.State == StateProcessing {
			return s
		}
		return Status{State: StateIdle, Since: e.At}

	case RunRequested:
		if s.State == StateProcessing || !e.HasFile {
			return s
		}
		return Status{State: StateProcessing, RunID: e.RunID, Since: e.At}

	case RunSucceeded:
		if s.State != StateProcessing || s.RunID != e.RunID {
			return s
		}
		return Status{State: StateDone, RunID: e.RunID, Result: e.Result, Since: e.At}

	case RunFailed:
		if s.State != StateProcessing || s.RunID != e.RunID {
			return s
		}
		return Status{State: StateError, RunID: e.RunID, Message: e.Message, Since: e.At}
	}
	return s
}
