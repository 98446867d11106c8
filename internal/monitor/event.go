package monitor

import (
	"time"

	"github.com/ivanzxc/go-vitals-stream/internal/record"
)

// State of the connection lifecycle.
type State int32

const (
	Idle State = iota
	Listening
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventKind tells which fields of an Event are set.
type EventKind int

const (
	// EventLog carries a raw record in Line.
	EventLog EventKind = iota
	// EventVoltage carries a smoothed sample in Index and Voltage.
	EventVoltage
	// EventFields carries a complete physiological field mapping.
	EventFields
	// EventRate carries a per-minute rate estimate.
	EventRate
	// EventStatus carries a lifecycle transition in State and Addr.
	EventStatus
	// EventError carries a diagnostic in Err.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventLog:
		return "log"
	case EventVoltage:
		return "voltage"
	case EventFields:
		return "fields"
	case EventRate:
		return "rate"
	case EventStatus:
		return "status"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to the presentation layer. Fields maps are never
// modified after the event is sent.
type Event struct {
	Kind    EventKind
	Time    time.Time
	Line    string
	Index   int
	Voltage float64
	Fields  record.Fields
	Rate    int
	State   State
	Addr    string
	Err     error
}
