package stream

import (
	"errors"

	"github.com/ivanzxc/go-vitals-stream/internal/monitor"
)

// Publisher exports monitor events to an external system.
type Publisher interface {
	Publish(ev monitor.Event) error
	Close() error
}

// Fanout publishes every event to all of its publishers.
type Fanout []Publisher

func (f Fanout) Publish(ev monitor.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
