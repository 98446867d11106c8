package record

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxRecordSize bounds a single record; longer lines fail the stream.
const MaxRecordSize = 64 * 1024

// ErrUnterminated ends a stream whose sender never delimits its records.
var ErrUnterminated = fmt.Errorf("record: no terminator within %d bytes", MaxRecordSize)

// Framer splits a byte stream into trimmed text records. A record ends at
// '\n', '\r' or NUL. Empty records are skipped.
type Framer struct {
	sc *bufio.Scanner
}

func NewFramer(r io.Reader) *Framer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxRecordSize)
	sc.Split(splitRecords)
	return &Framer{sc: sc}
}

// Next returns the next non-empty record. A *DecodeError concerns only the
// returned chunk and the caller may keep calling Next. At the end of the
// stream Next returns io.EOF. A record longer than MaxRecordSize fails with
// ErrUnterminated; other errors come from the underlying reader.
func (f *Framer) Next() (string, error) {
	for f.sc.Scan() {
		raw := bytes.TrimSpace(f.sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		if !utf8.Valid(raw) {
			return "", &DecodeError{Raw: append([]byte(nil), raw...)}
		}
		return string(raw), nil
	}
	if err := f.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", fmt.Errorf("%w: %w", ErrUnterminated, err)
		}
		return "", err
	}
	return "", io.EOF
}

func splitRecords(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\n\r\x00"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
