package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateWorkers(t *testing.T) {
	for _, n := range []int{0, 1, MaxWorkers} {
		if err := ValidateWorkers(n); err != nil {
			t.Errorf("ValidateWorkers(%d) = %v", n, err)
		}
	}
	for _, n := range []int{-1, MaxWorkers + 1} {
		if err := ValidateWorkers(n); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("ValidateWorkers(%d) = %v, want INVALID_INPUT", n, err)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Signature: "3/4"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.MinimumPulse != DefaultMinimumPulse {
		t.Errorf("MinimumPulse = %d, want %d", opts.MinimumPulse, DefaultMinimumPulse)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	opts.Workers = 3
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.Workers != 3 {
		t.Errorf("second call changed options: workers %d, err %v", opts.Workers, err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	two := []meter.Offset{meter.Whole(2), meter.Whole(1)}
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"no source", Options{}, errs.ErrCodeConfiguration},
		{"levels without signature", Options{Levels: []int{1}}, errs.ErrCodeConfiguration},
		{"bad signature characters", Options{Signature: "4/4; rm"}, errs.ErrCodeInvalidSignature},
		{"level too deep", Options{Signature: "4/4", Levels: []int{0, 9}}, errs.ErrCodeMalformedHierarchy},
		{"negative level", Options{Signature: "4/4", Levels: []int{-1}}, errs.ErrCodeMalformedHierarchy},
		{"legacy without pulses", Options{Signature: "4/4", Legacy: true}, errs.ErrCodeConfiguration},
		{"legacy same level", Options{Pulses: two, Legacy: true, SplitSameLevel: true}, errs.ErrCodeConfiguration},
		{"too many workers", Options{Signature: "4/4", Workers: 1000}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsSource(t *testing.T) {
	offsets := [][]meter.Offset{{meter.Whole(0), meter.Whole(4)}}
	pulses := []meter.Offset{meter.Whole(2), meter.Whole(1)}
	tests := []struct {
		name string
		opts Options
		want meter.Kind
		mode string
	}{
		{"signature", Options{Signature: "4/4"}, meter.KindSignature, ModeHierarchy},
		{"levels", Options{Signature: "4/4", Levels: []int{1}}, meter.KindSignatureLevels, ModeHierarchy},
		{"pulses beat signature", Options{Signature: "4/4", Pulses: pulses}, meter.KindPulses, ModeHierarchy},
		{"offsets beat all", Options{Signature: "4/4", Pulses: pulses, Offsets: offsets}, meter.KindOffsets, ModeHierarchy},
		{"legacy", Options{Pulses: pulses, Legacy: true}, meter.KindPulses, ModePulse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Source(); got != tt.want {
				t.Errorf("Source() = %q, want %q", got, tt.want)
			}
			if got := tt.opts.Mode(); got != tt.mode {
				t.Errorf("Mode() = %q, want %q", got, tt.mode)
			}
		})
	}
}

func TestHierarchyKeyOpts(t *testing.T) {
	a := Options{Signature: "4/4", MinimumPulse: 64, SplitSameLevel: true, Workers: 2}
	b := Options{Signature: "4/4", MinimumPulse: 64}
	ka, kb := a.HierarchyKeyOpts(), b.HierarchyKeyOpts()
	if ka.Signature != kb.Signature || ka.MinimumPulse != kb.MinimumPulse || ka.Source != kb.Source {
		t.Errorf("split-only settings changed key options: %+v vs %+v", ka, kb)
	}

	// Signature settings do not leak into a pulse key.
	p := Options{Signature: "4/4", Pulses: []meter.Offset{meter.Whole(2), meter.Whole(1)}}
	kp := p.HierarchyKeyOpts()
	if kp.Signature != "" || len(kp.Pulses) != 2 || kp.Pulses[1] != "1" {
		t.Errorf("pulse key options = %+v", kp)
	}

	o := Options{Offsets: [][]meter.Offset{{meter.Whole(0), meter.Whole(4)}}}
	if ko := o.HierarchyKeyOpts(); len(ko.OffsetsHash) != 64 {
		t.Errorf("offsets key should carry a hash: %+v", ko)
	}
}

func TestOptionsDescribe(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Signature: "6/8"}, "6/8"},
		{Options{Signature: "6/8", Levels: []int{0, 2}}, "6/8 levels [0 2]"},
		{Options{Pulses: []meter.Offset{meter.Whole(3), meter.NewOffset(3, 2)}}, "pulses [3 1.5]"},
		{Options{}, "none"},
	}
	for _, tt := range tests {
		if got := tt.opts.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestOptionsJSON(t *testing.T) {
	body := `{"pulses":[4,"2",1],"measure_length":"8","split_same_level":true,"workers":4}`
	var opts Options
	if err := json.Unmarshal([]byte(body), &opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.Pulses) != 3 || !opts.Pulses[1].Equal(meter.Whole(2)) {
		t.Errorf("Pulses = %v", opts.Pulses)
	}
	if !opts.MeasureLength.Equal(meter.Whole(8)) {
		t.Errorf("MeasureLength = %v", opts.MeasureLength)
	}
	if !opts.SplitSameLevel || opts.Workers != 4 {
		t.Errorf("flags not decoded: %+v", opts)
	}
}

func TestOptionsTOML(t *testing.T) {
	style := `
signature = "2+2+3/8"
levels = [0, 1, 2]
minimum_pulse = 32
split_same_level = true
`
	var opts Options
	if _, err := toml.Decode(style, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.Signature != "2+2+3/8" || len(opts.Levels) != 3 || opts.MinimumPulse != 32 || !opts.SplitSameLevel {
		t.Errorf("decoded options = %+v", opts)
	}

	pulses := `pulses = [3, 1.5, "1/2"]`
	var p Options
	if _, err := toml.Decode(pulses, &p); err != nil {
		t.Fatal(err)
	}
	if len(p.Pulses) != 3 || !p.Pulses[2].Equal(meter.NewOffset(1, 2)) {
		t.Errorf("Pulses = %v", p.Pulses)
	}
	if !strings.Contains(p.Describe(), "1.5") {
		t.Errorf("Describe() = %q", p.Describe())
	}
}
