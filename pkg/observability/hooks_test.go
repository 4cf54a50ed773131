package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnSnapshotStart(ctx, "/work/repo", "gogit")
	p.OnSnapshotComplete(ctx, "/work/repo", "gogit", 200, time.Second, nil)
	p.OnLayoutStart(ctx, 200, 5)
	p.OnLayoutComplete(ctx, time.Second, nil)
	p.OnExportStart(ctx, []string{"json"})
	p.OnExportComplete(ctx, []string{"json"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "snapshot")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// Server hooks
	s := NoopServerHooks{}
	s.OnRequest(ctx, "GET", "/api/graph")
	s.OnResponse(ctx, "GET", "/api/graph", 200, time.Second)
	s.OnSocketConnect(ctx, 1)
	s.OnSocketDisconnect(ctx, 0)
	s.OnWatchEvent(ctx, ".git/refs/heads/main")
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
