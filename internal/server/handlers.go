package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/nameparse"
	"github.com/sells-group/nameparse/internal/store"
)

const maxBodyBytes = 4 << 20

type parseRequest struct {
	Names      []string `json:"names"`
	NoLastName bool     `json:"no_last_name"`
}

type parseResponse struct {
	Results []nameparse.Result `json:"results"`
}

type properResponse struct {
	Name   string `json:"name"`
	Proper string `json:"proper"`
}

type runResponse struct {
	Run      *model.Run         `json:"run"`
	Unparsed []model.NameRecord `json:"unparsed"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) parseName(name string, noLastName bool) nameparse.Result {
	if noLastName {
		return s.parser.ParseGivenNames(name)
	}
	return s.parser.Parse(name)
}

func (s *Server) parseOne(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("name") {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	noLastName, _ := strconv.ParseBool(q.Get("no_last_name"))
	writeJSON(w, http.StatusOK, s.parseName(q.Get("name"), noLastName))
}

func (s *Server) parseMany(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Names == nil {
		writeError(w, http.StatusBadRequest, "names is required")
		return
	}
	if s.cfg.MaxBatch > 0 && len(req.Names) > s.cfg.MaxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, "too many names in one request")
		return
	}

	resp := parseResponse{Results: make([]nameparse.Result, len(req.Names))}
	for i, name := range req.Names {
		resp.Results[i] = s.parseName(name, req.NoLastName)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) proper(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("name") {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name := q.Get("name")
	writeJSON(w, http.StatusOK, properResponse{Name: name, Proper: s.parser.ProperCase(name)})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.parser.Stats())
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no store configured")
		return
	}

	filter := store.RunFilter{Status: model.RunStatus(r.URL.Query().Get("status"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no store configured")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get run", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}

	unparsed, err := s.store.ListResults(r.Context(), id, true, 0)
	if err != nil {
		zap.L().Error("server: list unparsed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list results failed")
		return
	}
	if unparsed == nil {
		unparsed = []model.NameRecord{}
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Unparsed: unparsed})
}
