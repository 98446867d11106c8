package monitor

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned by Start while a listener or connection is
// still active.
var ErrAlreadyRunning = errors.New("monitor: already listening or connected")

// BindError reports a failure to open the listening socket.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string { return fmt.Sprintf("monitor: listen on %s: %v", e.Addr, e.Err) }
func (e *BindError) Unwrap() error { return e.Err }

// AcceptError reports a failure while waiting for the sensor to connect.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string { return fmt.Sprintf("monitor: accept: %v", e.Err) }
func (e *AcceptError) Unwrap() error { return e.Err }

// StreamError reports the end of a connection that was not requested by
// Stop, including a peer closing the stream.
type StreamError struct {
	Peer string
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("monitor: stream from %s: %v", e.Peer, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
