package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	gerrors "github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameHostOrigin,
}

// commitView decorates a commit with a human-readable age.
type commitView struct {
	history.Commit
	Relative string `json:"relative"`
}

// branchView merges a branch's lane assignment with its tracking state.
type branchView struct {
	layout.Branch
	Upstream string `json:"upstream,omitempty"`
	Ahead    int    `json:"ahead,omitempty"`
	Behind   int    `json:"behind,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"repo":   s.opts.Pipeline.Repo,
	})
}

// handleGraph serves the layout document. The runner's caches make
// repeated calls with an unchanged repository cheap.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOpts(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.serveError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(res.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOpts(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	snap, err := s.runner.Snapshot(r.Context(), opts)
	if err != nil {
		s.serveError(w, err)
		return
	}

	now := time.Now()
	commits := make([]commitView, len(snap.Commits))
	for i, c := range snap.Commits {
		commits[i] = commitView{Commit: c, Relative: history.RelativeTime(c.Timestamp, now)}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"repo":    snap.Repo,
		"commits": commits,
	})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOpts(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	snap, err := s.runner.Snapshot(r.Context(), opts)
	if err != nil {
		s.serveError(w, err)
		return
	}
	g, err := s.runner.Layout(r.Context(), snap, opts)
	if err != nil {
		s.serveError(w, err)
		return
	}

	tracking := make(map[string]history.Branch, len(snap.Branches))
	for _, b := range snap.Branches {
		tracking[b.Name] = b
	}

	branches := make([]branchView, len(g.Branches))
	for i, b := range g.Branches {
		v := branchView{Branch: b}
		if t, ok := tracking[b.Name]; ok {
			v.Upstream = t.Upstream
			v.Ahead = t.Ahead
			v.Behind = t.Behind
		}
		branches[i] = v
	}

	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

// handleSocket upgrades to a websocket, sends the current layout, and
// keeps the client registered for broadcasts until it disconnects.
// Clients may send {"type":"refresh"} to force a recompute.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	client := &wsConn{conn: conn}
	n := s.hub.Register(client)
	observability.Server().OnSocketConnect(r.Context(), n)
	s.logger.Debug("socket connected", "clients", n)
	defer func() {
		left := s.hub.Unregister(client)
		observability.Server().OnSocketDisconnect(r.Context(), left)
		s.logger.Debug("socket disconnected", "clients", left)
		client.Close()
	}()

	if res := s.latest(); res != nil {
		if data := res.Artifacts[pipeline.FormatJSON]; data != nil {
			if err := client.WriteFrame(Frame{Type: FrameGraph, Data: data}); err != nil {
				return
			}
		}
	}

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		if f.Type == FrameRefresh {
			go s.refresh(s.refreshCtx())
		}
	}
}

// requestOpts copies the base pipeline options and applies limit/skip
// query parameters.
func (s *Server) requestOpts(r *http.Request) (pipeline.Options, error) {
	opts := s.opts.Pipeline
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("invalid limit %q", v)
		}
		opts.Limit = n
	}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid skip %q", v)
		}
		opts.Skip = n
	}
	return opts, nil
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// serveError maps pipeline errors onto HTTP statuses.
func (s *Server) serveError(w http.ResponseWriter, err error) {
	var locked *gerrors.RepoLockedError

	status := http.StatusInternalServerError
	switch {
	case stderrors.As(err, &locked):
		status = http.StatusServiceUnavailable
	case gerrors.Is(err, gerrors.ErrCodeRepoNotFound) || gerrors.Is(err, gerrors.ErrCodeNotFound):
		status = http.StatusNotFound
	case gerrors.Is(err, gerrors.ErrCodeInvalidRepo) ||
		gerrors.Is(err, gerrors.ErrCodeInvalidBackend) ||
		gerrors.Is(err, gerrors.ErrCodeInvalidFormat) ||
		gerrors.Is(err, gerrors.ErrCodeInvalidInput):
		status = http.StatusBadRequest
	}

	s.logger.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": gerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
