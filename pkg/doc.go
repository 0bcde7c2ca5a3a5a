// Package pkg provides the core libraries for Depspace dependency exploration.
//
// # Overview
//
// Depspace turns the output of a file-level dependency analyzer into an
// explorable 3D scene: nodes float in an organic physics layout or snap
// into a structured formation grid, filter missions highlight risk and
// rot, and a constrained camera keeps the graph in frame. The pkg
// directory is organized into three main areas:
//
//  1. Domain - graph model, layout, filtering, visual encoding, camera
//  2. Orchestration - the scene state store and frame loop
//  3. Infrastructure - config, sessions, snapshot storage, export
//
// # Architecture
//
// The typical data flow through Depspace:
//
//	Analyzer payload (fileGraph + fileData JSON)
//	         ↓
//	    [model] package (build graph, families, hub, stats)
//	         ↓
//	    [layout] package (organic physics / formation grid)
//	         ↓
//	    [filter] + [encode] packages (missions, dimming, color)
//	         ↓
//	    [scene] package (actions, frames, camera)
//	         ↓
//	    HTTP/WebSocket frames, terminal UI, or DOT/SVG export
//
// # Quick Start
//
// Build a graph and drive a scene one frame at a time:
//
//	import (
//	    "time"
//	    "github.com/codegnosis/depspace/pkg/model"
//	    "github.com/codegnosis/depspace/pkg/scene"
//	)
//
//	// 1. Decode the analyzer payload
//	analysis, _ := model.UnmarshalAnalysis(raw)
//	g := model.Build(analysis)
//
//	// 2. Create a scene and dispatch actions
//	sc, _ := scene.New(g, scene.Options{})
//	sc.Dispatch(scene.SetMission{Mission: filter.MissionRisk})
//
//	// 3. Step the loop and read frames
//	frame := sc.Step(time.Now())
//
// # Main Packages
//
// ## Domain
//
// [model] - The dependency graph: analyzer payload decoding, node
// families, metrics, hub detection, and summary statistics.
//
// [layout] - 3D positioning under two mutually exclusive modes. Organic
// mode runs a continuous force simulation seeded deterministically per
// node; formation mode interpolates nodes into a grid grouped by family
// and path depth.
//
// [filter] - Pure predicate filtering: missions (risk, rot, onboard,
// incident, optimize), family restrictions, node neighborhoods, and the
// full-graph fallback when filters would empty the view.
//
// [encode] - Visual attribute derivation: size from inbound degree,
// family or category palettes, dimming, highlight, and pulse.
//
// [camera] - Camera state and constraints: perspective projection,
// safe-zone corrective pans, horizon restore, and render-surface polling.
//
// ## Orchestration
//
// [scene] - The single explicit state store. All mutation goes through
// dispatched actions applied on the frame loop; every tick produces an
// immutable Frame snapshot carrying positions, visuals, filter state, and
// the camera pose.
//
// ## Infrastructure
//
// [config] - TOML configuration for the server, session, and snapshot
// backends.
//
// [session] - Exploration session persistence (filter state, mode, color
// mode, camera pose) with memory, Redis, and file backends.
//
// [store] - Analysis snapshot storage keyed by content hash, with
// in-memory LRU and MongoDB backends.
//
// [export] - Graphviz DOT generation and SVG rendering of the filtered
// graph.
//
// [errors] - Coded errors shared across the API surface, plus input
// validation for node ids, session ids, and snapshot keys.
//
// [observability] - Pluggable hooks for frame timing, mode changes,
// camera events, and cache activity.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//
// [model]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/model
// [layout]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/layout
// [filter]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/filter
// [encode]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/encode
// [camera]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/camera
// [scene]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/scene
// [config]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/config
// [session]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/session
// [store]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/store
// [export]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/export
// [errors]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/errors
// [observability]: https://pkg.go.dev/github.com/codegnosis/depspace/pkg/observability
package pkg
