// Package unitstream demultiplexes marker-delimited textual units. See
// doc.go for docs.
package unitstream

import (
	"strings"
)

const (
	// StartMarker and EndMarker are the literal line prefixes that delimit
	// one textual unit. The remainder of a marker line is the unit's
	// source path.
	StartMarker = "// TEXTUAL UNIT START"
	EndMarker   = "// TEXTUAL UNIT END"
)

// Unit is one source file's worth of textual compiler output, extracted
// from between a matching pair of start/end markers. A Unit is immutable
// once produced.
type Unit struct {
	SourcePath string
	Content    string // content lines, each with a trailing newline
	Line       int    // 1-based stream line number of the start marker
}

// LineKind tags the result of classifying one stream line.
type LineKind int

const (
	KindRegular LineKind = iota
	KindUnitStart
	KindUnitEnd
)

// ClassifiedLine is one line of compiler output tagged as a marker or as
// regular content.
type ClassifiedLine struct {
	Kind LineKind
	Name string // marker payload, whitespace-trimmed (markers only)
	Text string // the unchanged line (regular lines only)
}

// Classify tags a single line. The start marker is checked first, then the
// end marker; anything else is regular content with its text unchanged.
// Classify is pure: it never fails and never consumes input.
func Classify(line string) ClassifiedLine {
	if rest, ok := strings.CutPrefix(line, StartMarker); ok {
		return ClassifiedLine{Kind: KindUnitStart, Name: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(line, EndMarker); ok {
		return ClassifiedLine{Kind: KindUnitEnd, Name: strings.TrimSpace(rest)}
	}
	return ClassifiedLine{Kind: KindRegular, Text: line}
}
