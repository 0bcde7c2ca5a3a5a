package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codegnosis/depspace/pkg/buildinfo"
	apperrors "github.com/codegnosis/depspace/pkg/errors"
	"github.com/codegnosis/depspace/pkg/export"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
	"github.com/codegnosis/depspace/pkg/scene"
	"github.com/codegnosis/depspace/pkg/session"
	"github.com/codegnosis/depspace/pkg/store"
)

// maxAnalysisBytes bounds an analysis upload. Analyzer payloads for very
// large repositories stay well under this.
const maxAnalysisBytes = 64 << 20

// ============================================================================
// JSON helpers
// ============================================================================

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  apperrors.GetCode(err),
	})
}

func respondNoScene(w http.ResponseWriter) {
	respondError(w, http.StatusConflict,
		apperrors.New(apperrors.ErrCodeGraphNotFound, "no analysis loaded"))
}

// ============================================================================
// Health and version
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

// ============================================================================
// Analysis and graph
// ============================================================================

type analysisResponse struct {
	Key   string      `json:"key"`
	Stats model.Stats `json:"stats"`
}

// handleUploadAnalysis ingests a raw analyzer payload, stores it as a
// snapshot under its content hash, builds the graph, and starts a fresh
// scene for it.
func (s *Server) handleUploadAnalysis(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxAnalysisBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	analysis, err := model.UnmarshalAnalysis(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidAnalysis, err, "parse analysis"))
		return
	}

	g := model.Build(analysis)
	key := store.Key(raw)
	stats := model.Summarize(g)
	snap := &store.Snapshot{
		Key:       key,
		Analysis:  analysis,
		Stats:     stats,
		CreatedAt: time.Now(),
	}
	if err := s.opts.Snapshots.Put(r.Context(), snap); err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeStore, err, "store snapshot"))
		return
	}

	if err := s.startScene(g, key); err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "start scene"))
		return
	}

	s.logger.Info("analysis loaded", "key", key[:12], "nodes", stats.Nodes, "edges", stats.Edges)
	respondJSON(w, http.StatusCreated, analysisResponse{Key: key, Stats: stats})
}

// startScene builds and installs a scene for the graph.
func (s *Server) startScene(g *model.Graph, key string) error {
	sc, err := scene.New(g, scene.Options{
		FrameInterval: time.Duration(s.opts.Config.Server.FrameIntervalMS) * time.Millisecond,
		Logger:        s.logger,
	})
	if err != nil {
		return err
	}
	s.installScene(sc, g, key)
	return nil
}

type graphNode struct {
	ID       string        `json:"id"`
	Category string        `json:"category"`
	Family   model.Family  `json:"family"`
	Metrics  model.Metrics `json:"metrics"`
	Missing  bool          `json:"missing,omitempty"`
	Hub      bool          `json:"hub,omitempty"`
}

type graphResponse struct {
	Key   string       `json:"key"`
	Stats model.Stats  `json:"stats"`
	Nodes []graphNode  `json:"nodes"`
	Edges []model.Edge `json:"edges"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g, key := s.graph, s.graphKey
	s.mu.RUnlock()
	if g == nil {
		respondNoScene(w)
		return
	}

	resp := graphResponse{
		Key:   key,
		Stats: model.Summarize(g),
		Nodes: make([]graphNode, 0, g.NodeCount()),
		Edges: g.Edges(),
	}
	for _, n := range g.Nodes() {
		resp.Nodes = append(resp.Nodes, graphNode{
			ID:       n.ID,
			Category: n.Category,
			Family:   n.Family,
			Metrics:  n.Metrics,
			Missing:  n.Missing,
			Hub:      g.IsHub(n.ID),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if s.currentScene() == nil {
		respondNoScene(w)
		return
	}
	f, ok := s.latestFrame()
	if !ok {
		respondError(w, http.StatusServiceUnavailable,
			apperrors.New(apperrors.ErrCodeInternal, "no frame published yet"))
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]filter.Mission{"missions": filter.Missions})
}

// ============================================================================
// Actions
// ============================================================================

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene()
	if sc == nil {
		respondNoScene(w)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest,
			apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse action"))
		return
	}

	action, err := decodeAction(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := sc.Dispatch(action); err != nil {
		respondError(w, http.StatusTooManyRequests,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "dispatch action"))
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// ============================================================================
// Export
// ============================================================================

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	frame, hasFrame := s.lastFrame, s.hasFrame
	s.mu.RUnlock()
	if g == nil {
		respondNoScene(w)
		return
	}

	state := filter.State{}
	if hasFrame {
		state = frame.State
	}
	view := filter.Apply(g, state, time.Now())
	dot := export.ToDOT(g, view, export.Options{
		Detailed:  r.URL.Query().Get("detailed") == "true",
		ColorMode: frame.ColorMode,
	})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(dot))
	case "svg":
		svg, err := export.RenderSVG(dot)
		if err != nil {
			respondError(w, http.StatusInternalServerError,
				apperrors.Wrap(apperrors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	default:
		respondError(w, http.StatusBadRequest,
			apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown export format %q", format))
	}
}

// ============================================================================
// Snapshots
// ============================================================================

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	infos, err := s.opts.Snapshots.List(r.Context(), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeStore, err, "list snapshots"))
		return
	}
	respondJSON(w, http.StatusOK, map[string][]store.Info{"snapshots": infos})
}

func (s *Server) handleActivateSnapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := apperrors.ValidateSnapshotKey(key); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.opts.Snapshots.Get(r.Context(), key)
	if err == store.ErrNotFound {
		respondError(w, http.StatusNotFound,
			apperrors.New(apperrors.ErrCodeSnapshotNotFound, "snapshot %s not found", key[:12]))
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeStore, err, "load snapshot"))
		return
	}

	g := model.Build(snap.Analysis)
	if err := s.startScene(g, key); err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeInternal, err, "start scene"))
		return
	}
	respondJSON(w, http.StatusOK, analysisResponse{Key: key, Stats: snap.Stats})
}

// ============================================================================
// Sessions
// ============================================================================

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	key := s.graphKey
	frame, hasFrame := s.lastFrame, s.hasFrame
	sc := s.scene
	s.mu.RUnlock()
	if sc == nil {
		respondNoScene(w)
		return
	}
	if !hasFrame {
		respondError(w, http.StatusServiceUnavailable,
			apperrors.New(apperrors.ErrCodeInternal, "no frame published yet"))
		return
	}

	sess := session.New(key, frame.State, frame.Mode, frame.ColorMode, frame.Camera,
		time.Duration(s.opts.Config.Session.TTLHours)*time.Hour)
	if err := s.opts.Sessions.Set(r.Context(), sess); err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeStore, err, "save session"))
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateSessionID(id); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return nil
	}
	sess, err := s.opts.Sessions.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeStore, err, "load session"))
		return nil
	}
	if sess == nil {
		respondError(w, http.StatusNotFound,
			apperrors.New(apperrors.ErrCodeSessionNotFound, "session %s not found", id))
		return nil
	}
	return sess
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if sess := s.loadSession(w, r); sess != nil {
		respondJSON(w, http.StatusOK, sess)
	}
}

// handleRestoreSession re-applies a saved session's filter state, layout
// mode, color mode, and camera pose to the running scene.
func (s *Server) handleRestoreSession(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene()
	if sc == nil {
		respondNoScene(w)
		return
	}
	sess := s.loadSession(w, r)
	if sess == nil {
		return
	}

	s.mu.RLock()
	key := s.graphKey
	s.mu.RUnlock()
	if sess.GraphKey != key {
		respondError(w, http.StatusConflict,
			apperrors.New(apperrors.ErrCodeInvalidInput,
				"session was saved for a different graph"))
		return
	}

	for _, a := range []scene.Action{
		scene.SetFilterState{State: sess.State},
		scene.SetMode{Mode: sess.Mode},
		scene.SetColorMode{Mode: sess.ColorMode},
		scene.SetCameraPose{Pose: sess.Camera},
	} {
		if err := sc.Dispatch(a); err != nil {
			respondError(w, http.StatusTooManyRequests,
				apperrors.Wrap(apperrors.ErrCodeInternal, err, "dispatch restore"))
			return
		}
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateSessionID(id); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.opts.Sessions.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeStore, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
