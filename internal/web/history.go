package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yiblet/proboost/internal/clipboard"
	"github.com/yiblet/proboost/internal/history"
)

type historyAddReq struct {
	FeatureType history.FeatureType `json:"featureType"`
	Title       string              `json:"title"`
	Input       json.RawMessage     `json:"input"`
	Output      json.RawMessage     `json:"output"`
}

type historyPatchReq struct {
	Title  *string         `json:"title"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apiFail(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var feature history.FeatureType
	if v := q.Get("feature"); v != "" {
		ft, err := history.ParseFeatureType(v)
		if err != nil {
			apiFail(w, r, http.StatusBadRequest, err)
			return
		}
		feature = ft
	}

	var items []history.HistoryItem
	if pattern := q.Get("q"); pattern != "" {
		found, err := s.app.History.Search(pattern, 0)
		if err != nil {
			apiFail(w, r, http.StatusBadRequest, err)
			return
		}
		items = found
	} else {
		items = s.app.History.List()
	}

	data := make([]history.HistoryItem, 0, len(items))
	for _, it := range items {
		if feature != "" && it.FeatureType != feature {
			continue
		}
		data = append(data, it)
		if limit > 0 && len(data) >= limit {
			break
		}
	}
	apiOk(w, r, data, len(data))
}

func (s *Server) addHistory(w http.ResponseWriter, r *http.Request) {
	var req historyAddReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	if _, err := history.ParseFeatureType(string(req.FeatureType)); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	if len(req.Input) == 0 {
		apiFail(w, r, http.StatusBadRequest, "input is required")
		return
	}

	item := s.app.History.Add(history.Entry{
		FeatureType: req.FeatureType,
		Input:       req.Input,
		Output:      req.Output,
	}, req.Title)
	render.Status(r, http.StatusCreated)
	apiOk(w, r, item)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	s.app.History.Clear()
	apiOk(w, r)
}

func (s *Server) itemOr404(w http.ResponseWriter, r *http.Request) (history.HistoryItem, bool) {
	id := chi.URLParam(r, "id")
	item, ok := s.app.History.Get(id)
	if !ok {
		apiFail(w, r, http.StatusNotFound, "history item not found")
	}
	return item, ok
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	if item, ok := s.itemOr404(w, r); ok {
		apiOk(w, r, item)
	}
}

func (s *Server) patchHistory(w http.ResponseWriter, r *http.Request) {
	var req historyPatchReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")
	if !s.app.History.Update(id, history.Patch{Title: req.Title, Input: req.Input, Output: req.Output}) {
		apiFail(w, r, http.StatusNotFound, "history item not found")
		return
	}
	item, _ := s.app.History.Get(id)
	apiOk(w, r, item)
}

func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request) {
	if !s.app.History.Delete(chi.URLParam(r, "id")) {
		apiFail(w, r, http.StatusNotFound, "history item not found")
		return
	}
	render.NoContent(w, r)
}

func (s *Server) exportHistory(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFormat(w, r)
	if !ok {
		return
	}
	item, ok := s.itemOr404(w, r)
	if !ok {
		return
	}
	doc, err := s.app.Render(item, f)
	if err != nil {
		if errors.Is(err, history.ErrNoDocument) {
			apiError(w, r, err)
			return
		}
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	s.deliver(w, r, doc)
}

func (s *Server) copyHistory(w http.ResponseWriter, r *http.Request) {
	item, ok := s.itemOr404(w, r)
	if !ok {
		return
	}
	text, err := history.DocumentText(item)
	if err != nil {
		apiError(w, r, err)
		return
	}
	n, err := clipboard.Copy(s.clipboard, text)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiOk(w, r, M{"bytes": n})
}
