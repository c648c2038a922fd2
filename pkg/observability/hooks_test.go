package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "signature")
	b.OnBuildComplete(ctx, "signature", 4, time.Millisecond, nil)

	s := NoopSplitHooks{}
	s.OnSplitComplete(ctx, "hierarchy", 3, time.Millisecond, nil)
	s.OnBatchComplete(ctx, "batch-1", 10, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "hierarchy")
	c.OnCacheMiss(ctx, "hierarchy")
	c.OnCacheSet(ctx, "hierarchy", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/split")
	h.OnResponse(ctx, "POST", "/v1/split", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Split().(NoopSplitHooks); !ok {
		t.Error("Split() should return NoopSplitHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customSplit := &testSplitHooks{}
	SetSplitHooks(customSplit)
	if Split() != customSplit {
		t.Error("SetSplitHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
	if _, ok := Split().(NoopSplitHooks); !ok {
		t.Error("Reset() should restore NoopSplitHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)
	SetBuildHooks(nil)

	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}
}

// Test implementations
type testBuildHooks struct{ NoopBuildHooks }
type testSplitHooks struct{ NoopSplitHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
