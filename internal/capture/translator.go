package capture

import (
	"fmt"
)

// Artifact is the opaque result of translating one unit. Only the Sink
// that pairs with the Translator needs to understand it.
type Artifact any

// Diagnostic is one structured error reported by a translator. Line and
// Column refer to the compiler's output stream via the line map passed to
// Translate, or are zero when the diagnostic has no position.
type Diagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// TranslateError carries the diagnostics a translator produced for one
// unit. It marks the unit as errored; the run as a whole continues.
type TranslateError struct {
	SourcePath  string
	Diagnostics []Diagnostic
}

func (e *TranslateError) Error() string {
	return fmt.Sprintf("translation of %s failed with %d diagnostics", e.SourcePath, len(e.Diagnostics))
}

// Translator converts one unit's textual content into an artifact.
// lineMap maps 0-based content line numbers to 1-based line numbers in
// the compiler's output stream, so diagnostics can point back into it.
// A failed translation returns a *TranslateError.
type Translator interface {
	Translate(sourcePath, content string, lineMap []int) (Artifact, error)
}

// Sink persists an artifact that was successfully translated.
type Sink interface {
	Capture(artifact Artifact) error
}
