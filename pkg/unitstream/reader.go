// Package unitstream demultiplexes marker-delimited textual units. See
// doc.go for docs.
package unitstream

import (
	"bufio"
	"errors"
	"io"
)

// maxLineSize bounds a single line of compiler output. Textual units can
// carry long string literals, but a line beyond this is pathological: it
// gets truncated and the rest of it discarded, so one such line cannot
// exhaust memory or stall the stream.
const maxLineSize = 1024 * 1024

// LineReader reads a line-oriented stream with exactly one line of
// lookahead. The lookahead slot is seeded at construction, so the
// underlying stream is read eagerly by one line. A read blocks until the
// stream produces a line or closes.
type LineReader struct {
	reader    *bufio.Reader
	current   string
	ok        bool
	truncated bool  // current was cut at maxLineSize
	lastTrunc bool  // line most recently returned by Next was cut
	err       error // first read error other than end of stream
	returned  int   // count of lines handed out so far
}

// NewLineReader wraps the given stream and seeds the lookahead slot.
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{reader: bufio.NewReaderSize(r, 64*1024)}
	lr.advance()
	return lr
}

// advance refills the lookahead slot with the next line, minus its
// delimiter. On a read error the partial line is dropped and the stream
// ends; Err reports what happened.
func (r *LineReader) advance() {
	r.current, r.ok, r.truncated = "", false, false
	if r.err != nil {
		return
	}
	var buf []byte
	for {
		chunk, err := r.reader.ReadSlice('\n')
		if err == nil {
			chunk = chunk[:len(chunk)-1]
		}
		if room := maxLineSize - len(buf); room >= len(chunk) {
			buf = append(buf, chunk...)
		} else {
			buf = append(buf, chunk[:room]...)
			r.truncated = true
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if len(buf) == 0 && !r.truncated {
				return
			}
			break
		}
		r.err = err
		return
	}
	if n := len(buf); n > 0 && buf[n-1] == '\r' && !r.truncated {
		buf = buf[:n-1]
	}
	r.current, r.ok = string(buf), true
}

// Next returns the buffered line and refills the buffer from the stream.
// Once Next has returned a line, that line is never returned again. The
// second return value is false when the stream is exhausted.
func (r *LineReader) Next() (string, bool) {
	if !r.ok {
		return "", false
	}
	line := r.current
	r.lastTrunc = r.truncated
	r.returned++
	r.advance()
	return line, true
}

// NextNonBlank advances past empty lines, returning the first non-empty
// line, or false if the stream ends while skipping. Only the empty string
// counts as blank: whitespace-only lines are content and are returned.
func (r *LineReader) NextNonBlank() (string, bool) {
	for {
		line, ok := r.Next()
		if !ok || line != "" {
			return line, ok
		}
	}
}

// LastLineTruncated reports whether the line most recently returned by
// Next exceeded maxLineSize and was cut, with the remainder discarded.
func (r *LineReader) LastLineTruncated() bool {
	return r.lastTrunc
}

// Err returns the read error that ended the stream, or nil if the stream
// ended cleanly (or has not ended yet).
func (r *LineReader) Err() error {
	return r.err
}

// Line returns the 1-based stream position of the line most recently
// returned by Next, or 0 before the first line.
func (r *LineReader) Line() int {
	return r.returned
}
