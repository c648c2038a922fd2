package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "hierarchy:abc", []byte(`{"levels":[]}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "hierarchy:abc")
	if err != nil || hit || data != nil {
		t.Errorf("Get after Set = (%q, %v, %v), want a plain miss", data, hit, err)
	}
	if err := c.Delete(ctx, "hierarchy:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, ok := c.(Clearer); ok {
		t.Error("a disabled cache has nothing to clear")
	}
	if got := Describe(c); got != "disabled" {
		t.Errorf("Describe = %q, want disabled", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`[[0,4]]`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v", hit, err)
	}
	if string(data) != `[[0,4]]` {
		t.Errorf("Get(k) = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned as hit")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear left %d shard directories", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := HierarchyKeyOpts{Source: "signature", Signature: "4/4", MinimumPulse: 64}

	key := k.HierarchyKey(base)
	if !strings.HasPrefix(key, "hierarchy:") {
		t.Errorf("key %q lacks hierarchy prefix", key)
	}
	if key != k.HierarchyKey(base) {
		t.Error("HierarchyKey should be deterministic")
	}

	variants := map[string]HierarchyKeyOpts{
		"signature":     {Source: "signature", Signature: "3/4", MinimumPulse: 64},
		"minimum pulse": {Source: "signature", Signature: "4/4", MinimumPulse: 32},
		"levels":        {Source: "signature-levels", Signature: "4/4", Levels: []int{0, 1}, MinimumPulse: 64},
		"pulses":        {Source: "pulses", Pulses: []string{"2", "1"}},
		"measure":       {Source: "pulses", Pulses: []string{"2", "1"}, MeasureLength: "4"},
		"ratio check":   {Source: "pulses", Pulses: []string{"2", "1"}, SkipRatioCheck: true},
	}
	seen := map[string]string{key: "base"}
	for name, opts := range variants {
		got := k.HierarchyKey(opts)
		if prev, ok := seen[got]; ok {
			t.Errorf("%s collides with %s", name, prev)
		}
		seen[got] = name
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:7:")
	opts := HierarchyKeyOpts{Source: "signature", Signature: "6/8"}

	got := scoped.HierarchyKey(opts)
	if got != "tenant:7:"+inner.HierarchyKey(opts) {
		t.Errorf("ScopedKeyer key unexpected: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	opts := HierarchyKeyOpts{Source: "signature", Signature: "6/8"}
	if got := scoped.HierarchyKey(opts); got != "prefix:"+NewDefaultKeyer().HierarchyKey(opts) {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		url  string
		dir  string
		want string
	}{
		{"empty url uses dir", "", dir, "file " + dir},
		{"empty url and dir disables", "", "", "disabled"},
		{"none", "none", dir, "disabled"},
		{"off", "off", dir, "disabled"},
		{"file url", "file://" + dir, "", "file " + dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.url, tt.dir)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			if got := Describe(c); got != tt.want {
				t.Errorf("Describe = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Open(ctx, "memcached://localhost", ""); !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("unknown scheme: got %v, want ErrUnsupportedURL", err)
	}
	if _, err := Open(ctx, "redis://%zz", ""); err == nil {
		t.Error("malformed redis url should fail")
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017", DefaultMongoDatabase},
		{"mongodb://localhost:27017/", DefaultMongoDatabase},
		{"mongodb://localhost:27017/meters", "meters"},
		{"mongodb+srv://user:pw@cluster.example.net/prod?retryWrites=true", "prod"},
	}
	for _, tt := range tests {
		if got := mongoDatabase(tt.uri); got != tt.want {
			t.Errorf("mongoDatabase(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

var errTransient = errors.New("transient")

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errTransient)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, errTransient) {
		t.Error("wrapped error should unwrap to the cause")
	}

	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrUnavailable
	})
	if err != ErrUnavailable {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errTransient)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Attempts are capped
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(errTransient)
	})
	if !errors.Is(err, errTransient) || calls != 3 {
		t.Errorf("exhausted retries: err %v after %d calls", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errTransient)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
