// Package io provides JSON import and export for metrical hierarchies, span
// lists and split results.
//
// # Hierarchy Format
//
// A hierarchy is a nested array of offsets in quarter-lengths, coarsest
// level first:
//
//	[
//	  [0, 3.5],
//	  [0, 1, 2, 3.5],
//	  [0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5]
//	]
//
// Offsets that have no finite decimal form are written as "p/q" strings,
// for example "1/3". Both spellings are accepted on input. Every level must
// start at 0, end at the measure length and be strictly increasing; each
// level must contain the one above it.
//
// # Span Format
//
// Span lists are either a JSON array of objects:
//
//	[{"start": 0.25, "length": 2}, {"start": "1/3", "length": "2/3"}]
//
// or plain text with one "start length" pair per line. Blank lines and
// lines starting with '#' are ignored:
//
//	# start  length
//	0.25     2
//	1/3      2/3
//
// # Results
//
// [WriteResults] encodes split results as indented JSON: the span, the
// split mode, the fragments and any pulse-mode overflow.
//
// # Import and Export
//
// The Read*/Write* functions work on any io.Reader or io.Writer. The
// Import*/Export* functions are file-based wrappers that validate the path
// first and report a missing file as FILE_NOT_FOUND.
package io
