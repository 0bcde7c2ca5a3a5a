package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Scene hooks
	s := NoopSceneHooks{}
	s.OnFrameStart(ctx, "organic", 100)
	s.OnFrameComplete(ctx, "organic", time.Millisecond)
	s.OnModeChange(ctx, "organic", "formation")
	s.OnTransitionComplete(ctx, "formation", 900*time.Millisecond)
	s.OnFilterApply(ctx, "risk", 12, 100, false)

	// Camera hooks
	cam := NoopCameraHooks{}
	cam.OnSurfaceAttached(ctx, 1280, 720)
	cam.OnSurfaceGiveUp(ctx, 120)
	cam.OnCorrectivePan(ctx, 14.5, -3)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "view")
	c.OnCacheMiss(ctx, "snapshot")
	c.OnCacheSet(ctx, "snapshot", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Scene() should return NoopSceneHooks by default")
	}
	if _, ok := Camera().(NoopCameraHooks); !ok {
		t.Error("Camera() should return NoopCameraHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customScene := &testSceneHooks{}
	SetSceneHooks(customScene)
	if Scene() != customScene {
		t.Error("SetSceneHooks should set custom hooks")
	}

	customCamera := &testCameraHooks{}
	SetCameraHooks(customCamera)
	if Camera() != customCamera {
		t.Error("SetCameraHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Reset() should restore NoopSceneHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSceneHooks{}
	SetSceneHooks(custom)

	// Setting nil should be ignored
	SetSceneHooks(nil)

	if Scene() != custom {
		t.Error("SetSceneHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testSceneHooks struct{ NoopSceneHooks }
type testCameraHooks struct{ NoopCameraHooks }
type testCacheHooks struct{ NoopCacheHooks }
