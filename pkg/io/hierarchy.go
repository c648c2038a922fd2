package io

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
)

// WriteHierarchy encodes h as an indented nested offset array.
// The output can be re-imported with [ReadHierarchy].
func WriteHierarchy(h *meter.Hierarchy, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h.Offsets()); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode hierarchy")
	}
	return nil
}

// ExportHierarchy writes h to a JSON file at path.
func ExportHierarchy(h *meter.Hierarchy, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteHierarchy(h, w) })
}

// ReadOffsets decodes a nested offset array without validating it. Use it
// to feed explicit offsets into a pipeline, which validates on build.
func ReadOffsets(r io.Reader) ([][]meter.Offset, error) {
	var offsets [][]meter.Offset
	if err := json.NewDecoder(r).Decode(&offsets); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode hierarchy")
	}
	return offsets, nil
}

// ReadHierarchy decodes and validates a hierarchy from r.
//
// It returns INVALID_FORMAT for malformed JSON and MALFORMED_HIERARCHY when
// the levels break the hierarchy invariants. ReadHierarchy does not close r.
func ReadHierarchy(r io.Reader) (*meter.Hierarchy, error) {
	offsets, err := ReadOffsets(r)
	if err != nil {
		return nil, err
	}
	return meter.NewHierarchy(offsets)
}

// ImportHierarchy reads and validates a hierarchy from the JSON file at path.
func ImportHierarchy(path string) (*meter.Hierarchy, error) {
	var h *meter.Hierarchy
	err := importFile(path, func(r io.Reader) (err error) {
		h, err = ReadHierarchy(r)
		return err
	})
	return h, err
}

// ImportOffsets reads an unvalidated nested offset array from path.
func ImportOffsets(path string) ([][]meter.Offset, error) {
	var offsets [][]meter.Offset
	err := importFile(path, func(r io.Reader) (err error) {
		offsets, err = ReadOffsets(r)
		return err
	})
	return offsets, err
}
