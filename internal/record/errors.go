package record

import "fmt"

// DecodeError reports a chunk of the stream that is not valid UTF-8 text.
type DecodeError struct {
	Raw []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record: invalid utf-8 in %d-byte record", len(e.Raw))
}

// ParseError reports a record with a known prefix but a malformed payload.
type ParseError struct {
	Kind Kind
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record: malformed %s record %q: %v", e.Kind, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
