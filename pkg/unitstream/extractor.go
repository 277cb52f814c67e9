// Package unitstream demultiplexes marker-delimited textual units. See
// doc.go for docs.
package unitstream

import (
	"io"
	"log/slog"
	"strings"
)

// Extractor turns the flat line stream of one compiler run into a sequence
// of complete units. It is a pull-based, single-pass iterator: each call to
// Next drives the stream forward until a unit closes or the stream ends.
// The sequence is not restartable and not safe for concurrent use.
type Extractor struct {
	reader    *LineReader
	log       *slog.Logger
	warnedErr bool
}

// NewExtractor builds an extractor over the given stream. Protocol
// warnings are written to logger; a nil logger means slog.Default().
func NewExtractor(r io.Reader, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{reader: NewLineReader(r), log: logger}
}

// Next returns the next complete unit, or false once the stream is
// exhausted. Malformed marker sequences are logged as warnings and skipped;
// they never abort extraction (see doc.go for the recovery rules).
func (x *Extractor) Next() (Unit, bool) {
	line, ok := x.reader.Next()
	for ok {
		start := Classify(line)
		if start.Kind != KindUnitStart {
			x.log.Warn("unexpected line outside a unit", "line", line)
			line, ok = x.reader.NextNonBlank()
			continue
		}
		startLine := x.reader.Line()
		var content strings.Builder
	accumulate:
		for {
			line, ok = x.reader.Next()
			if !ok {
				x.warnStreamError()
				x.log.Warn("unfinished unit at end of stream", "source", start.Name)
				return Unit{}, false
			}
			cl := Classify(line)
			switch cl.Kind {
			case KindRegular:
				if x.reader.LastLineTruncated() {
					x.log.Warn("oversized line truncated", "source", start.Name, "limit_bytes", maxLineSize)
				}
				content.WriteString(cl.Text)
				content.WriteByte('\n')
			case KindUnitEnd:
				if cl.Name == start.Name {
					return Unit{SourcePath: start.Name, Content: content.String(), Line: startLine}, true
				}
				x.log.Warn("unexpected end of another unit", "expected", start.Name, "got", cl.Name)
				line, ok = x.reader.NextNonBlank()
				break accumulate
			case KindUnitStart:
				// The offending line may itself open the next unit, so it is
				// reconsidered as a start without being consumed again. Each
				// line still passes through exactly once, so a run of
				// consecutive start markers terminates.
				x.log.Warn("unexpected start of another unit", "open", start.Name, "got", cl.Name)
				break accumulate
			}
		}
	}
	x.warnStreamError()
	return Unit{}, false
}

// Err returns the read error that ended the stream, or nil if it ended
// cleanly. Valid once Next has returned false.
func (x *Extractor) Err() error {
	return x.reader.Err()
}

func (x *Extractor) warnStreamError() {
	if err := x.reader.Err(); err != nil && !x.warnedErr {
		x.warnedErr = true
		x.log.Warn("error reading compiler output", "error", err)
	}
}
