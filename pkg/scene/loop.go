package scene

import (
	"context"
	"time"

	"github.com/codegnosis/depspace/pkg/observability"
)

// Step advances the scene by one frame: queued actions are applied,
// the layout and camera animations tick, and a snapshot is assembled.
// Everything runs on the caller's goroutine; the scene has no other
// execution context.
func (s *Scene) Step(now time.Time) Frame {
	started := time.Now()
	observability.Scene().OnFrameStart(context.Background(), s.engine.Mode().String(), s.graph.NodeCount())

	s.drainActions(now)

	if s.opts.Surface != nil {
		s.camera.PollSurface(s.opts.Surface)
	}

	wasTransitioning := s.engine.Transitioning()
	s.engine.Tick(now)
	if wasTransitioning && !s.engine.Transitioning() {
		observability.Scene().OnTransitionComplete(context.Background(),
			s.engine.Mode().String(), s.engine.Params().TransitionDuration)
	}
	s.camera.Tick(now)

	s.seq++
	f := s.assemble(now)

	observability.Scene().OnFilterApply(context.Background(), string(s.state.Mission),
		f.Visible, s.graph.NodeCount(), f.Fallback)
	observability.Scene().OnFrameComplete(context.Background(),
		s.engine.Mode().String(), time.Since(started))
	return f
}

// Run drives the frame loop until the context is cancelled. Each tick
// steps the scene once and fans the frame out to subscribers.
func (s *Scene) Run(ctx context.Context) error {
	s.opts.Logger.Info("frame loop started",
		"interval", s.opts.FrameInterval,
		"nodes", s.graph.NodeCount())

	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.opts.Logger.Info("frame loop stopped")
			return ctx.Err()
		case now := <-ticker.C:
			s.publish(s.Step(now))
		}
	}
}
