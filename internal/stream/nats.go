package stream

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ivanzxc/go-vitals-stream/internal/monitor"
)

func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("go-vitals-stream"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// NATSPublisher publishes each event on "<prefix>.<kind>".
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject returns the subject carrying events of the given kind.
func (p *NATSPublisher) Subject(kind monitor.EventKind) string {
	return p.prefix + "." + kind.String()
}

func (p *NATSPublisher) Publish(ev monitor.Event) error {
	_, payload, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.Subject(ev.Kind), payload); err != nil {
		return fmt.Errorf("failed to publish to nats: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
