package record

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, f *Framer) ([]string, []error) {
	t.Helper()
	var records []string
	var errs []error
	for {
		rec, err := f.Next()
		if err == io.EOF {
			return records, errs
		}
		var derr *DecodeError
		if errors.As(err, &derr) {
			errs = append(errs, err)
			continue
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
}

func TestFramer_SplitsAndTrims(t *testing.T) {
	f := NewFramer(strings.NewReader("V0=0.5\r\n\n  AC=[1],HR=80  \nhello\x00V0=0.7"))
	records, errs := collect(t, f)

	assert.Empty(t, errs)
	assert.Equal(t, []string{"V0=0.5", "AC=[1],HR=80", "hello", "V0=0.7"}, records)
}

func TestFramer_ByteAtATime(t *testing.T) {
	f := NewFramer(iotest.OneByteReader(strings.NewReader("V0=0.1\nV0=0.2\n")))
	records, _ := collect(t, f)
	assert.Equal(t, []string{"V0=0.1", "V0=0.2"}, records)
}

func TestFramer_DecodeErrorDoesNotStopStream(t *testing.T) {
	f := NewFramer(strings.NewReader("V0=\xff\xfe\nV0=0.9\n"))

	_, err := f.Next()
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, []byte("V0=\xff\xfe"), derr.Raw)

	rec, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "V0=0.9", rec)

	_, err = f.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFramer_ReaderError(t *testing.T) {
	boom := errors.New("connection reset")
	f := NewFramer(io.MultiReader(strings.NewReader("V0=0.1\n"), iotest.ErrReader(boom)))

	rec, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "V0=0.1", rec)

	_, err = f.Next()
	assert.ErrorIs(t, err, boom)
}

func TestFramer_EmptyStream(t *testing.T) {
	_, err := NewFramer(strings.NewReader("\n\r\n  \n")).Next()
	assert.Equal(t, io.EOF, err)
}

func TestFramer_UnterminatedSender(t *testing.T) {
	f := NewFramer(strings.NewReader("V0=0.1\n" + strings.Repeat("V0=0.2 ", MaxRecordSize/7+1)))

	rec, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "V0=0.1", rec)

	_, err = f.Next()
	assert.ErrorIs(t, err, ErrUnterminated)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}
