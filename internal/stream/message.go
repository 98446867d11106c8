package stream

import (
	"encoding/json"

	"github.com/ivanzxc/go-vitals-stream/internal/monitor"
	"github.com/ivanzxc/go-vitals-stream/internal/record"
)

// Message is the wire form of a monitor event.
type Message struct {
	Type    string        `json:"type"`
	Ts      int64         `json:"ts"`
	Line    string        `json:"line,omitempty"`
	Index   *int          `json:"index,omitempty"`
	Voltage *float64      `json:"voltage,omitempty"`
	Fields  record.Fields `json:"fields,omitempty"`
	Rate    *int          `json:"rate,omitempty"`
	State   string        `json:"state,omitempty"`
	Addr    string        `json:"addr,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NewMessage converts an event. The returned message shares the event's
// field map, which is never modified after delivery.
func NewMessage(ev monitor.Event) Message {
	msg := Message{Type: ev.Kind.String(), Ts: ev.Time.UnixMilli()}

	switch ev.Kind {
	case monitor.EventLog:
		msg.Line = ev.Line
	case monitor.EventVoltage:
		index, voltage := ev.Index, ev.Voltage
		msg.Index, msg.Voltage = &index, &voltage
	case monitor.EventFields:
		msg.Fields = ev.Fields
	case monitor.EventRate:
		rate := ev.Rate
		msg.Rate = &rate
	case monitor.EventStatus:
		msg.State = ev.State.String()
		msg.Addr = ev.Addr
	case monitor.EventError:
		if ev.Err != nil {
			msg.Error = ev.Err.Error()
		}
	}
	return msg
}

// Encode returns the event's kind, used as the subject/topic suffix, and
// its JSON payload.
func Encode(ev monitor.Event) (string, []byte, error) {
	b, err := json.Marshal(NewMessage(ev))
	if err != nil {
		return "", nil, err
	}
	return ev.Kind.String(), b, nil
}
