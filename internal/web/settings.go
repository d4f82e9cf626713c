package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type settingReq struct {
	Value string `json:"value"`
}

func (s *Server) listSettings(w http.ResponseWriter, r *http.Request) {
	apiOk(w, r, s.app.Settings.List())
}

func (s *Server) getSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, err := s.app.Settings.Get(name)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiOk(w, r, M{"name": name, "value": v})
}

func (s *Server) putSetting(w http.ResponseWriter, r *http.Request) {
	var req settingReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.app.Settings.Set(name, req.Value); err != nil {
		apiError(w, r, err)
		return
	}
	v, _ := s.app.Settings.Get(name)
	apiOk(w, r, M{"name": name, "value": v})
}
