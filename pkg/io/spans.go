package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/regroup"
)

// ReadSpans decodes a span list from r. The format is detected from the
// first non-space byte: '[' selects JSON, anything else the line format.
// Spans are not range-checked here; the splitter does that against the
// hierarchy.
func ReadSpans(r io.Reader) ([]regroup.Span, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read spans")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var spans []regroup.Span
		if err := json.Unmarshal(trimmed, &spans); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode spans")
		}
		return spans, nil
	}
	return readSpanLines(bytes.NewReader(data))
}

func readSpanLines(r io.Reader) ([]regroup.Span, error) {
	var spans []regroup.Span
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: want \"start length\", got %q", line, text)
		}
		start, err := meter.ParseOffset(fields[0])
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d: start", line)
		}
		length, err := meter.ParseOffset(fields[1])
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d: length", line)
		}
		spans = append(spans, regroup.Span{Start: start, Length: length})
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read spans")
	}
	return spans, nil
}

// ImportSpans reads a span list from the file at path.
func ImportSpans(path string) ([]regroup.Span, error) {
	var spans []regroup.Span
	err := importFile(path, func(r io.Reader) (err error) {
		spans, err = ReadSpans(r)
		return err
	})
	return spans, err
}
