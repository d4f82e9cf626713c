package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/history"
)

type screenResp struct {
	Feature history.FeatureType `json:"feature"`
	Fields  json.RawMessage     `json:"fields"`
	Result  *app.Result         `json:"result"`
	Busy    bool                `json:"busy"`
	CanUndo bool                `json:"canUndo"`
}

func (s *Server) screenOr400(w http.ResponseWriter, r *http.Request) (*app.Screen, history.FeatureType, bool) {
	ft, err := history.ParseFeatureType(chi.URLParam(r, "feature"))
	if err != nil {
		apiFail(w, r, http.StatusNotFound, err)
		return nil, "", false
	}
	return s.app.Screen(ft), ft, true
}

func screenState(ft history.FeatureType, sc *app.Screen) screenResp {
	st := sc.Snapshot()
	return screenResp{
		Feature: ft,
		Fields:  st.Fields,
		Result:  st.Result,
		Busy:    sc.Busy(),
		CanUndo: sc.CanUndo(),
	}
}

func (s *Server) getScreen(w http.ResponseWriter, r *http.Request) {
	if sc, ft, ok := s.screenOr400(w, r); ok {
		apiOk(w, r, screenState(ft, sc))
	}
}

func (s *Server) putScreenFields(w http.ResponseWriter, r *http.Request) {
	sc, ft, ok := s.screenOr400(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	if !json.Valid(body) {
		apiFail(w, r, http.StatusBadRequest, "fields must be valid JSON")
		return
	}
	if sc.Busy() {
		apiFail(w, r, http.StatusConflict, "generation in progress")
		return
	}
	sc.SetFields(json.RawMessage(body))
	apiOk(w, r, screenState(ft, sc))
}

func (s *Server) postGenerate(w http.ResponseWriter, r *http.Request) {
	sc, ft, ok := s.screenOr400(w, r)
	if !ok {
		return
	}
	if _, err := history.DecodeInput(ft, sc.Fields()); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	res, err := sc.Generate(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiOk(w, r, res)
}

func (s *Server) postUndo(w http.ResponseWriter, r *http.Request) {
	sc, ft, ok := s.screenOr400(w, r)
	if !ok {
		return
	}
	if sc.Busy() {
		apiFail(w, r, http.StatusConflict, "generation in progress")
		return
	}
	if !sc.Undo() {
		apiFail(w, r, http.StatusConflict, "nothing to undo")
		return
	}
	apiOk(w, r, screenState(ft, sc))
}
