package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys.
type Keyer interface {
	HierarchyKey(opts HierarchyKeyOpts) string
}

// HierarchyKeyOpts lists every input that shapes a hierarchy. Offsets are
// spelled as strings so keys do not depend on float formatting.
type HierarchyKeyOpts struct {
	Source         string   `json:"source"`
	Signature      string   `json:"signature,omitempty"`
	Levels         []int    `json:"levels,omitempty"`
	MinimumPulse   int      `json:"minimum_pulse,omitempty"`
	Pulses         []string `json:"pulses,omitempty"`
	MeasureLength  string   `json:"measure_length,omitempty"`
	SkipRatioCheck bool     `json:"skip_ratio_check,omitempty"`
	OffsetsHash    string   `json:"offsets_hash,omitempty"`
}

// DefaultKeyer hashes key options into "hierarchy:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HierarchyKey implements [Keyer]. The struct is marshalled with its field
// order fixed, so equal options always give the same key.
func (k *DefaultKeyer) HierarchyKey(opts HierarchyKeyOpts) string {
	data, _ := json.Marshal(opts)
	return "hierarchy:" + Hash(data)
}

// ScopedKeyer prefixes every key of an inner [Keyer], giving several
// deployments their own namespace in one shared backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HierarchyKey implements [Keyer].
func (k *ScopedKeyer) HierarchyKey(opts HierarchyKeyOpts) string {
	return k.prefix + k.inner.HierarchyKey(opts)
}

// Hash returns the hex SHA-256 of data. It names offset files in keys and
// entries on disk.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
