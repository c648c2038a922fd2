package io

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/pipeline"
)

// WriteResults encodes split results as an indented JSON array.
func WriteResults(results []pipeline.Result, w io.Writer) error {
	if results == nil {
		results = []pipeline.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode results")
	}
	return nil
}

// ExportResults writes split results to a JSON file at path.
func ExportResults(results []pipeline.Result, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteResults(results, w) })
}
