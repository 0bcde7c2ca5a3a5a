// Package scene composes the graph model, layout engine, filter engine,
// visual encoder, and camera controller into one explicit state store.
//
// All mutable UI state (mission, family selection, layout mode, selected
// node, camera pose) lives in the Scene and changes only through dispatched
// actions, applied on the frame loop's goroutine. Consumers subscribe to
// frame snapshots and selection events; nothing outside the loop writes.
package scene

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codegnosis/depspace/pkg/camera"
	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/layout"
	"github.com/codegnosis/depspace/pkg/model"
)

// ============================================================================
// Errors
// ============================================================================

var (
	// ErrNilGraph indicates the scene was created without a graph.
	ErrNilGraph = errors.New("scene: nil graph")
	// ErrQueueFull indicates the action queue has no room; the caller may
	// retry on the next frame.
	ErrQueueFull = errors.New("scene: action queue full")
	// ErrUnknownNode indicates a selection action named a node that is not
	// in the graph.
	ErrUnknownNode = errors.New("scene: unknown node")
)

// ============================================================================
// Options
// ============================================================================

// Options configures a Scene. The zero value is usable after
// ValidateAndSetDefaults.
type Options struct {
	// Layout configures the layout engine.
	Layout layout.Params

	// Encode configures the visual mapper.
	Encode encode.Params

	// Camera configures the camera constraint controller.
	Camera camera.Options

	// FrameInterval is the cadence of the frame loop.
	FrameInterval time.Duration

	// ActionBuffer bounds the pending-action queue.
	ActionBuffer int

	// SelectionBuffer bounds the selection event channel.
	SelectionBuffer int

	// Surface probes the render surface each frame until the camera
	// controller attaches or gives up. Optional; a nil probe leaves the
	// camera unattached and framing checks disabled.
	Surface func() (camera.Viewport, bool)

	// Logger receives loop lifecycle messages. Defaults to the
	// package-level logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.FrameInterval == 0 {
		o.FrameInterval = 33 * time.Millisecond
	}
	if o.FrameInterval < 0 {
		return errors.New("scene: negative frame interval")
	}
	if o.ActionBuffer == 0 {
		o.ActionBuffer = 64
	}
	if o.SelectionBuffer == 0 {
		o.SelectionBuffer = 16
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o.Camera.ValidateAndSetDefaults()
}

// ============================================================================
// Scene
// ============================================================================

// SelectionEvent reports a node selection change. An empty ID means the
// selection was cleared.
type SelectionEvent struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
}

// Scene owns the complete exploration state for one loaded graph.
type Scene struct {
	opts Options

	// Loop-confined state. Only Step (and the actions it drains) touch
	// these fields.
	graph  *model.Graph
	engine *layout.Engine
	mapper *encode.Mapper
	camera *camera.Controller
	state  filter.State
	memo   *filter.Memo
	seq    uint64

	actions chan Action

	mu        sync.Mutex
	subs      map[uint64]chan Frame
	nextSubID uint64

	selection chan SelectionEvent
}

// New builds a scene around an already-built graph.
func New(g *model.Graph, opts Options) (*Scene, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cam, err := camera.NewController(opts.Camera)
	if err != nil {
		return nil, err
	}
	return &Scene{
		opts:      opts,
		graph:     g,
		engine:    layout.New(g, opts.Layout),
		mapper:    encode.NewMapper(opts.Encode),
		camera:    cam,
		memo:      filter.NewMemo(g),
		actions:   make(chan Action, opts.ActionBuffer),
		subs:      make(map[uint64]chan Frame),
		selection: make(chan SelectionEvent, opts.SelectionBuffer),
	}, nil
}

// Dispatch queues an action for the next frame. It never blocks; a full
// queue returns ErrQueueFull and the action is dropped.
func (s *Scene) Dispatch(a Action) error {
	select {
	case s.actions <- a:
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a frame consumer. The returned channel carries the
// latest frame; slow consumers skip frames rather than stalling the loop.
// cancel removes the subscription and closes the channel.
func (s *Scene) Subscribe() (frames <-chan Frame, cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Frame, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Selections returns the stream of node selection events.
func (s *Scene) Selections() <-chan SelectionEvent { return s.selection }

// emitSelection publishes without blocking; when the consumer lags, the
// oldest event is dropped in favor of the newest.
func (s *Scene) emitSelection(ev SelectionEvent) {
	for {
		select {
		case s.selection <- ev:
			return
		default:
			select {
			case <-s.selection:
			default:
			}
		}
	}
}

// publish fans the frame out to all subscribers, latest-wins.
func (s *Scene) publish(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- f:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- f:
			default:
			}
		}
	}
}
