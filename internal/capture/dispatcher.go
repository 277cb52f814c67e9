package capture

import (
	"errors"
	"log/slog"
	"strings"

	"unitcap/internal/tempdir"
	"unitcap/pkg/unitstream"
)

// Outcome classifies the result of dispatching one unit.
type Outcome int

const (
	Captured Outcome = iota
	Errored
)

// Dispatcher hands one extracted unit to the translator/capture
// collaborator and classifies the result. On failure the unit's raw
// content is dumped to a temp file for offline inspection; with DumpUnits
// set, every unit is dumped.
type Dispatcher struct {
	Translator Translator
	Sink       Sink
	Tmp        *tempdir.Dir
	DumpUnits  bool
	Log        *slog.Logger
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// Dispatch translates and captures one unit. The returned outcome is the
// only thing the caller needs; all diagnostics are logged here.
func (d *Dispatcher) Dispatch(u unitstream.Unit) Outcome {
	artifact, err := d.Translator.Translate(u.SourcePath, u.Content, contentLineMap(u))
	if err != nil {
		var terr *TranslateError
		if errors.As(err, &terr) {
			for _, diag := range terr.Diagnostics {
				d.logger().Error("translation diagnostic",
					"source", u.SourcePath, "line", diag.Line, "column", diag.Column, "message", diag.Message)
			}
		} else {
			d.logger().Error("translation failed", "source", u.SourcePath, "error", err)
		}
		d.dump(u)
		return Errored
	}
	if err := d.Sink.Capture(artifact); err != nil {
		d.logger().Error("capture failed", "source", u.SourcePath, "error", err)
		d.dump(u)
		return Errored
	}
	if d.DumpUnits {
		d.dump(u)
	}
	return Captured
}

// contentLineMap maps each 0-based content line of the unit to its 1-based
// line number in the compiler's output stream. Content lines sit directly
// after the start marker, so the map is a run of consecutive numbers.
func contentLineMap(u unitstream.Unit) []int {
	n := strings.Count(u.Content, "\n")
	lineMap := make([]int, n)
	for i := range lineMap {
		lineMap[i] = u.Line + 1 + i
	}
	return lineMap
}

// dump writes the unit's raw content to a uniquely-named temp file. Purely
// diagnostic: a dump failure is logged but never changes the outcome.
func (d *Dispatcher) dump(u unitstream.Unit) {
	if d.Tmp == nil {
		return
	}
	f, err := d.Tmp.CreateFile(tempdir.Flatten(u.SourcePath), ".txt")
	if err != nil {
		d.logger().Warn("failed to create unit dump file", "source", u.SourcePath, "error", err)
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(u.Content); err != nil {
		d.logger().Warn("failed to write unit dump file", "source", u.SourcePath, "error", err)
		return
	}
	d.logger().Debug("unit content dumped", "source", u.SourcePath, "path", f.Name())
}
