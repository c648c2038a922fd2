package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/pipeline"
	"github.com/matzehuels/regroup/pkg/regroup"
)

func TestHierarchyRoundTrip(t *testing.T) {
	h, err := meter.FromSignature(meter.MustParseSignature("2+2+3/8"), 8)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteHierarchy(h, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHierarchy(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(h) {
		t.Errorf("round trip changed hierarchy:\n got %s\nwant %s", got, h)
	}
}

func TestReadHierarchyThirds(t *testing.T) {
	in := `[[0, 1], [0, "1/3", "2/3", 1]]`
	h, err := ReadHierarchy(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if !h.Level(1)[1].Equal(meter.NewOffset(1, 3)) {
		t.Errorf("level 1 = %v", h.Level(1))
	}

	var buf bytes.Buffer
	if err := WriteHierarchy(h, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"1/3"`) {
		t.Errorf("thirds should be written as fractions:\n%s", buf.String())
	}
}

func TestReadHierarchyErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errs.Code
	}{
		{"not json", `{levels`, errs.ErrCodeInvalidFormat},
		{"object", `{"levels": []}`, errs.ErrCodeInvalidFormat},
		{"bad offset", `[[0, "x"]]`, errs.ErrCodeInvalidFormat},
		{"empty", `[]`, errs.ErrCodeMalformedHierarchy},
		{"level 0 not a pair", `[[0, 2, 4]]`, errs.ErrCodeMalformedHierarchy},
		{"not refined", `[[0, 4], [0, 3]]`, errs.ErrCodeMalformedHierarchy},
		{"unsorted", `[[0, 4], [0, 3, 2, 4]]`, errs.ErrCodeMalformedHierarchy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHierarchy(strings.NewReader(tt.in))
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportImportHierarchy(t *testing.T) {
	h, err := meter.FromSignature(meter.MustParseSignature("3/4"), 8)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "meter.json")
	if err := ExportHierarchy(h, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportHierarchy(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(h) {
		t.Errorf("import = %s, want %s", got, h)
	}

	offsets, err := ImportOffsets(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(offsets) != h.Depth() {
		t.Errorf("ImportOffsets depth = %d, want %d", len(offsets), h.Depth())
	}
}

func TestImportErrors(t *testing.T) {
	if _, err := ImportHierarchy(filepath.Join(t.TempDir(), "missing.json")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := ImportSpans(""); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("empty path: %v", err)
	}
	if err := ExportResults(nil, filepath.Join(t.TempDir(), "no", "such", "dir.json")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("bad export dir: %v", err)
	}
}

func TestReadSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json", `[{"start": 0.25, "length": 2}, {"start": "1/3", "length": "2/3"}]`, "(0.25, 2)(1/3, 2/3)"},
		{"lines", "# start length\n0.25 2\n\n1/3\t2/3\n", "(0.25, 2)(1/3, 2/3)"},
		{"leading space json", "  \n[]", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := ReadSpans(strings.NewReader(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			got := ""
			for _, s := range spans {
				got += s.String()
			}
			if got != tt.want {
				t.Errorf("spans = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReadSpansErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"json type", `[{"start": true}]`, "decode spans"},
		{"one field", "0.5\n", "line 1"},
		{"three fields", "0 1\n0 1 2\n", "line 2"},
		{"bad start", "x 1\n", "line 1: start"},
		{"bad length", "0 y\n", "line 1: length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSpans(strings.NewReader(tt.in))
			if !errs.Is(err, errs.ErrCodeInvalidFormat) {
				t.Fatalf("error = %v, want INVALID_FORMAT", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q should mention %q", err, tt.msg)
			}
		})
	}
}

func TestImportSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.txt")
	if err := os.WriteFile(path, []byte("0 1\n1.5 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	spans, err := ImportSpans(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 2 || !spans[1].Start.Equal(meter.NewOffset(3, 2)) {
		t.Errorf("spans = %v", spans)
	}
}

func TestWriteResults(t *testing.T) {
	results := []pipeline.Result{{
		Span: regroup.Span{Start: meter.NewOffset(1, 2), Length: meter.Whole(1)},
		Mode: pipeline.ModeHierarchy,
		Fragments: []regroup.Fragment{
			{Position: meter.NewOffset(1, 2), Length: meter.NewOffset(1, 2)},
			{Position: meter.Whole(1), Length: meter.NewOffset(1, 2)},
		},
	}}

	var buf bytes.Buffer
	if err := WriteResults(results, &buf); err != nil {
		t.Fatal(err)
	}

	var decoded []struct {
		Span struct {
			Start  float64 `json:"start"`
			Length float64 `json:"length"`
		} `json:"span"`
		Mode      string `json:"mode"`
		Fragments []struct {
			Position float64 `json:"position"`
			Length   float64 `json:"length"`
		} `json:"fragments"`
		Overflow float64 `json:"overflow"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || len(decoded[0].Fragments) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded[0].Fragments[1].Position != 1 || decoded[0].Mode != "hierarchy" {
		t.Errorf("decoded = %+v", decoded[0])
	}

	buf.Reset()
	if err := WriteResults(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil results = %q, want []", buf.String())
	}
}
