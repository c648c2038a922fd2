package errors

import (
	"strings"
	"testing"
)

func TestValidateSignatureString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "4/4", false},
		{"compound", "12/8", false},
		{"additive", "2+2+3/8", false},
		{"spaced", "2 + 3 / 4", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("1+", 40) + "1/4", true},
		{"letters", "C/4", true},
		{"decimal", "4.5/4", true},
		{"control char", "4/\x014", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignatureString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSignatureString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSignature) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidSignature)
			}
		})
	}
}

func TestValidateLevels(t *testing.T) {
	tests := []struct {
		name    string
		levels  []int
		wantErr bool
	}{
		{"empty", nil, false},
		{"within cap", []int{1, 2, 6}, false},
		{"zero", []int{0}, false},
		{"above cap", []int{1, 7}, true},
		{"negative", []int{-1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLevels(tt.levels, 6)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLevels(%v) error = %v, wantErr %v", tt.levels, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeMalformedHierarchy) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeMalformedHierarchy)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "styles/compound.toml", false},
		{"absolute", "/tmp/spans.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
