package monitor

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ivanzxc/go-vitals-stream/internal/analysis"
	"github.com/ivanzxc/go-vitals-stream/internal/record"
)

const (
	DefaultEventBuffer  = 1024
	DefaultRateInterval = time.Second
)

// Options configure a Monitor. Zero values select the defaults.
type Options struct {
	EventBuffer  int
	RateInterval time.Duration

	// Clock stamps peaks; it must return monotonic readings.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Stats are running counters since the monitor was created.
type Stats struct {
	Records      int64 `json:"records"`
	Samples      int64 `json:"samples"`
	FieldBlocks  int64 `json:"field_blocks"`
	Peaks        int64 `json:"peaks"`
	DecodeErrors int64 `json:"decode_errors"`
	ParseErrors  int64 `json:"parse_errors"`
	Connections  int64 `json:"connections"`
}

// Monitor accepts a single sensor connection, feeds its records through the
// analysis pipeline and publishes the results on Events.
//
// Events must be drained by the caller; a full channel blocks the receive
// loop.
type Monitor struct {
	logger       *zap.Logger
	pipeline     *analysis.Pipeline
	events       chan Event
	rateInterval time.Duration

	life     context.Context
	shutdown context.CancelFunc

	mu       sync.Mutex
	state    State
	session  uint64
	listener net.Listener
	conn     net.Conn
	cancel   context.CancelFunc
	done     chan struct{}

	records, samples, fieldBlocks, peaks atomic.Int64
	decodeErrs, parseErrs, connections   atomic.Int64
}

func New(opts Options) *Monitor {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.RateInterval <= 0 {
		opts.RateInterval = DefaultRateInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	life, shutdown := context.WithCancel(context.Background())
	return &Monitor{
		logger:       opts.Logger,
		pipeline:     analysis.NewPipeline(opts.Clock),
		events:       make(chan Event, opts.EventBuffer),
		rateInterval: opts.RateInterval,
		life:         life,
		shutdown:     shutdown,
		state:        Idle,
	}
}

// Events is the outbound event stream. It is never closed.
func (m *Monitor) Events() <-chan Event { return m.events }

// Pipeline exposes the signal state.
func (m *Monitor) Pipeline() *analysis.Pipeline { return m.pipeline }

// History returns the recent smoothed samples for display.
func (m *Monitor) History() []analysis.Point { return m.pipeline.History() }

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Addr is the listening address while listening, otherwise nil.
func (m *Monitor) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

func (m *Monitor) Stats() Stats {
	return Stats{
		Records:      m.records.Load(),
		Samples:      m.samples.Load(),
		FieldBlocks:  m.fieldBlocks.Load(),
		Peaks:        m.peaks.Load(),
		DecodeErrors: m.decodeErrs.Load(),
		ParseErrors:  m.parseErrs.Load(),
		Connections:  m.connections.Load(),
	}
}

// Start listens on host:port and waits in the background for one sensor
// connection. Failures are returned and also published as error events.
func (m *Monitor) Start(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	m.mu.Lock()
	if m.state == Listening || m.state == Connected {
		m.mu.Unlock()
		m.emitError(m.life, ErrAlreadyRunning)
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		m.state = Idle
		m.mu.Unlock()
		berr := &BindError{Addr: addr, Err: err}
		m.logger.Error("Failed to listen", zap.String("addr", addr), zap.Error(err))
		m.emitError(m.life, berr)
		return berr
	}

	ctx, cancel := context.WithCancel(m.life)
	m.session++
	session := m.session
	done := make(chan struct{})
	m.listener = ln
	m.state = Listening
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.logger.Info("Waiting for sensor", zap.String("addr", ln.Addr().String()))
	m.emitStatus(m.life, Listening, ln.Addr().String())

	go func() {
		defer close(done)
		m.serve(ctx, session, ln)
	}()
	return nil
}

// Stop ends the receive loop and releases the connection and the listener.
// It is safe to call in any state and always leaves the monitor Closed.
func (m *Monitor) Stop() {
	m.mu.Lock()
	wasActive := m.state == Listening || m.state == Connected
	m.session++
	m.releaseLocked()
	m.state = Closed
	done := m.done
	m.done = nil
	m.mu.Unlock()

	if done != nil {
		<-done
	}
	if wasActive {
		m.logger.Info("Disconnected")
		m.emitStatus(m.life, Closed, "")
	}
}

// Clear resets the pipeline state without touching the connection.
func (m *Monitor) Clear() {
	m.pipeline.Clear()
	m.logger.Info("Pipeline state cleared")
}

// Run re-estimates the rate every RateInterval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.rateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.life.Done():
			return nil
		case <-ticker.C:
			if rate, err := m.pipeline.Rate(); err == nil {
				m.emit(ctx, Event{Kind: EventRate, Rate: rate})
			}
		}
	}
}

// Close unblocks every pending event send and stops the monitor. Events
// raised while closing are dropped.
func (m *Monitor) Close() {
	m.shutdown()
	m.Stop()
}

// releaseLocked closes the session resources; it is idempotent.
func (m *Monitor) releaseLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	if m.listener != nil {
		_ = m.listener.Close()
		m.listener = nil
	}
}

// finish ends session with the given state unless Stop or a newer Start
// already took over.
func (m *Monitor) finish(session uint64, state State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != session {
		return false
	}
	m.releaseLocked()
	m.state = state
	m.done = nil
	return true
}

func (m *Monitor) serve(ctx context.Context, session uint64, ln net.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if m.finish(session, Idle) {
			m.logger.Error("Accept failed", zap.Error(err))
			m.emitError(m.life, &AcceptError{Err: err})
			m.emitStatus(m.life, Idle, "")
		}
		return
	}

	peer := conn.RemoteAddr().String()

	m.mu.Lock()
	if m.session != session {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	// Only one sensor is served; later peers are refused.
	_ = m.listener.Close()
	m.listener = nil
	m.conn = conn
	m.state = Connected
	m.mu.Unlock()

	m.connections.Add(1)
	m.logger.Info("Sensor connected", zap.String("peer", peer))
	m.emitStatus(ctx, Connected, peer)

	err = m.receive(ctx, conn)
	if ctx.Err() != nil {
		return
	}
	if m.finish(session, Closed) {
		serr := &StreamError{Peer: peer, Err: err}
		m.logger.Error("Sensor stream ended", zap.String("peer", peer), zap.Error(err))
		m.emitError(m.life, serr)
		m.emitStatus(m.life, Closed, peer)
	}
}

// receive processes records in arrival order until the stream fails.
func (m *Monitor) receive(ctx context.Context, conn net.Conn) error {
	framer := record.NewFramer(conn)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := framer.Next()
		if err != nil {
			var derr *record.DecodeError
			if errors.As(err, &derr) {
				m.decodeErrs.Add(1)
				m.logger.Warn("Undecodable record", zap.Int("size", len(derr.Raw)))
				m.emitError(ctx, err)
				continue
			}
			return err
		}

		m.handle(ctx, text)
	}
}

func (m *Monitor) handle(ctx context.Context, text string) {
	m.records.Add(1)
	m.emit(ctx, Event{Kind: EventLog, Line: text})

	rec, err := record.Parse(text)
	if err != nil {
		m.parseErrs.Add(1)
		m.logger.Warn("Malformed record", zap.String("record", text), zap.Error(err))
		m.emitError(ctx, err)
		return
	}

	switch rec.Kind {
	case record.KindVoltage:
		m.samples.Add(1)
		res := m.pipeline.Process(rec.Voltage)
		m.emit(ctx, Event{Kind: EventVoltage, Index: res.Index, Voltage: res.Smoothed})
		if res.Peak {
			m.peaks.Add(1)
			m.logger.Debug("Peak detected", zap.Int("index", res.Index))
		}
		if res.RateOK {
			m.emit(ctx, Event{Kind: EventRate, Rate: res.Rate})
		}
	case record.KindFields:
		m.fieldBlocks.Add(1)
		m.emit(ctx, Event{Kind: EventFields, Fields: rec.Fields})
	}
}

func (m *Monitor) emitStatus(ctx context.Context, state State, addr string) {
	m.emit(ctx, Event{Kind: EventStatus, State: state, Addr: addr})
}

func (m *Monitor) emitError(ctx context.Context, err error) {
	m.emit(ctx, Event{Kind: EventError, Err: err})
}

func (m *Monitor) emit(ctx context.Context, ev Event) {
	ev.Time = time.Now()
	select {
	case m.events <- ev:
	case <-ctx.Done():
	case <-m.life.Done():
	}
}
