// Package unitstream demultiplexes the marker-delimited textual units that a
// compiler frontend interleaves on one stdout stream.
//
// # Textual Unit Format
//
// # Overview
//
// A compiler frontend running in textual-emit mode compiles many source files
// in one invocation and writes all of their intermediate "textual" output to
// a single stdout stream. Each source file's output is delimited by marker
// lines so that the stream can be split back into per-file units:
//
//	// TEXTUAL UNIT START <source-path>
//	<unit content lines...>
//	// TEXTUAL UNIT END <source-path>
//
// repeated once per compiled input. The source path on the end marker must
// match the path on the corresponding start marker (after whitespace
// trimming) for a clean close.
//
// # Lines
//
//   - A marker is recognized by its literal line prefix. The remainder of
//     the line, trimmed of surrounding whitespace, is the unit's source path.
//   - Any line that is not a marker is regular content and is accumulated
//     unchanged into the currently open unit.
//   - Content lines are joined with a newline after each line, so a unit
//     with lines "a" and "b" has content "a\nb\n".
//
// # Recovery
//
// The stream comes from an external process and may be malformed. The
// extractor never aborts on a malformed marker sequence; every case is
// logged as a warning and extraction resynchronizes at the next plausible
// start marker:
//
//   - A marker or content line outside any unit is skipped.
//   - An end marker naming a different unit than the open one discards the
//     partial unit.
//   - A start marker inside an open unit discards the partial unit and is
//     itself reconsidered as the start of a new unit.
//   - A unit still open at end of stream is discarded.
//
// One corrupted unit therefore never prevents later well-formed units from
// being recovered.
package unitstream
