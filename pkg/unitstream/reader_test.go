package unitstream

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// failingReader yields its data and then fails with err instead of a
// clean EOF.
type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestLineReaderNext(t *testing.T) {
	r := NewLineReader(strings.NewReader("a\nb\nc\n"))

	line, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, "a", line)
	require.Equal(t, 1, r.Line())

	line, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, "b", line)
	require.Equal(t, 2, r.Line())

	line, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, "c", line)
	require.Equal(t, 3, r.Line())

	_, ok = r.Next()
	require.False(t, ok)
}

func TestLineReaderNeverRepeatsLines(t *testing.T) {
	r := NewLineReader(strings.NewReader("a\na\nb\n"))

	var seen []string
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		seen = append(seen, line)
	}
	require.Equal(t, []string{"a", "a", "b"}, seen)
}

func TestLineReaderNoTrailingNewline(t *testing.T) {
	r := NewLineReader(strings.NewReader("only"))

	line, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, "only", line)

	_, ok = r.Next()
	require.False(t, ok)
}

func TestLineReaderEmptyStream(t *testing.T) {
	r := NewLineReader(strings.NewReader(""))

	_, ok := r.Next()
	require.False(t, ok)
	require.Equal(t, 0, r.Line())
}

func TestLineReaderNextNonBlank(t *testing.T) {
	r := NewLineReader(strings.NewReader("\n\nfirst\nsecond\n"))

	line, ok := r.NextNonBlank()
	require.True(t, ok)
	require.Equal(t, "first", line)

	line, ok = r.NextNonBlank()
	require.True(t, ok)
	require.Equal(t, "second", line)

	_, ok = r.NextNonBlank()
	require.False(t, ok)
}

func TestLineReaderNextNonBlankKeepsWhitespaceLines(t *testing.T) {
	// Whitespace-only lines are content, not blanks. Only the empty
	// string gets skipped.
	r := NewLineReader(strings.NewReader("\n   \nx\n"))

	line, ok := r.NextNonBlank()
	require.True(t, ok)
	require.Equal(t, "   ", line)
}

func TestLineReaderNextNonBlankAllBlank(t *testing.T) {
	r := NewLineReader(strings.NewReader("\n\n\n"))

	_, ok := r.NextNonBlank()
	require.False(t, ok)
}

func TestLineReaderTruncatesOversizedLine(t *testing.T) {
	long := strings.Repeat("x", maxLineSize+512)
	r := NewLineReader(strings.NewReader(long + "\nafter\n"))

	line, ok := r.Next()
	require.True(t, ok)
	require.Len(t, line, maxLineSize)
	require.True(t, r.LastLineTruncated())

	// The rest of the oversized line is discarded, not delivered as a
	// second line: the stream stays in sync.
	line, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, "after", line)
	require.False(t, r.LastLineTruncated())

	_, ok = r.Next()
	require.False(t, ok)
	require.NoError(t, r.Err())
}

func TestLineReaderLineAtExactLimitNotTruncated(t *testing.T) {
	exact := strings.Repeat("x", maxLineSize)
	r := NewLineReader(strings.NewReader(exact + "\n"))

	line, ok := r.Next()
	require.True(t, ok)
	require.Len(t, line, maxLineSize)
	require.False(t, r.LastLineTruncated())
}

func TestLineReaderSurfacesReadError(t *testing.T) {
	readErr := errors.New("read: connection reset")
	r := NewLineReader(&failingReader{data: []byte("first\nsecond\n"), err: readErr})

	line, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, "first", line)

	line, ok = r.Next()
	require.True(t, ok)
	require.Equal(t, "second", line)

	_, ok = r.Next()
	require.False(t, ok)
	require.ErrorIs(t, r.Err(), readErr)
}

func TestLineReaderCleanEOFHasNoError(t *testing.T) {
	r := NewLineReader(strings.NewReader("a\n"))

	_, _ = r.Next()
	_, ok := r.Next()
	require.False(t, ok)
	require.NoError(t, r.Err())
}
