// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about scene ticks, camera corrections, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSceneHooks(&mySceneHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scene().OnFrameStart(ctx, mode, nodeCount)
//	// ... advance the simulation ...
//	observability.Scene().OnFrameComplete(ctx, mode, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives events from the scene frame loop.
type SceneHooks interface {
	// Frame events
	OnFrameStart(ctx context.Context, mode string, nodeCount int)
	OnFrameComplete(ctx context.Context, mode string, duration time.Duration)

	// Mode events
	OnModeChange(ctx context.Context, from, to string)
	OnTransitionComplete(ctx context.Context, mode string, duration time.Duration)

	// Filter events
	OnFilterApply(ctx context.Context, mission string, visible, total int, fallback bool)
}

// =============================================================================
// Camera Hooks
// =============================================================================

// CameraHooks receives events from the camera constraint controller.
type CameraHooks interface {
	// OnSurfaceAttached records a successful render-surface acquisition.
	OnSurfaceAttached(ctx context.Context, width, height float64)

	// OnSurfaceGiveUp records that surface polling exhausted its attempts.
	OnSurfaceGiveUp(ctx context.Context, attempts int)

	// OnCorrectivePan records the start of a corrective pan animation.
	OnCorrectivePan(ctx context.Context, dx, dy float64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnFrameStart(context.Context, string, int)                   {}
func (NoopSceneHooks) OnFrameComplete(context.Context, string, time.Duration)      {}
func (NoopSceneHooks) OnModeChange(context.Context, string, string)                {}
func (NoopSceneHooks) OnTransitionComplete(context.Context, string, time.Duration) {}
func (NoopSceneHooks) OnFilterApply(context.Context, string, int, int, bool)       {}

// NoopCameraHooks is a no-op implementation of CameraHooks.
type NoopCameraHooks struct{}

func (NoopCameraHooks) OnSurfaceAttached(context.Context, float64, float64) {}
func (NoopCameraHooks) OnSurfaceGiveUp(context.Context, int)                {}
func (NoopCameraHooks) OnCorrectivePan(context.Context, float64, float64)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sceneHooks  SceneHooks  = NoopSceneHooks{}
	cameraHooks CameraHooks = NoopCameraHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetSceneHooks registers custom scene hooks.
// This should be called once at application startup before the frame loop runs.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// SetCameraHooks registers custom camera hooks.
// This should be called once at application startup.
func SetCameraHooks(h CameraHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cameraHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Camera returns the registered camera hooks.
func Camera() CameraHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cameraHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sceneHooks = NoopSceneHooks{}
	cameraHooks = NoopCameraHooks{}
	cacheHooks = NoopCacheHooks{}
}
