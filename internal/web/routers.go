package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/clipboard"
	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/generate"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/settings"
	"github.com/yiblet/proboost/internal/sink"
	"github.com/yiblet/proboost/internal/undo"
)

type M = render.M

func (s *Server) strapRouter() {
	s.ar.Get("/ping", handlerPing)

	s.ar.Route("/api", func(r chi.Router) {
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.listHistory)
			r.Post("/", s.addHistory)
			r.Delete("/", s.clearHistory)
			r.Get("/{id}", s.getHistory)
			r.Patch("/{id}", s.patchHistory)
			r.Delete("/{id}", s.deleteHistory)
			r.Get("/{id}/export/{format}", s.exportHistory)
			r.Post("/{id}/copy", s.copyHistory)
		})

		r.Post("/export/{format}", s.exportText)
		r.Post("/bundle", s.postBundle)
		r.Post("/image", s.postImage)
		r.Post("/ingest", s.postIngest)

		r.Route("/screens/{feature}", func(r chi.Router) {
			r.Get("/", s.getScreen)
			r.Put("/fields", s.putScreenFields)
			r.Post("/generate", s.postGenerate)
			r.Post("/undo", s.postUndo)
		})

		r.Get("/settings", s.listSettings)
		r.Get("/settings/{name}", s.getSetting)
		r.Put("/settings/{name}", s.putSetting)
	})
}

func handlerPing(w http.ResponseWriter, r *http.Request) {
	render.Data(w, r, []byte("Pong\n"))
}

// RespDone is the envelope of every successful JSON reply.
type RespDone struct {
	Status int `json:"status"`
	Data   any `json:"data,omitempty"`
	Count  int `json:"count,omitempty"`
}

func apiOk(w http.ResponseWriter, r *http.Request, args ...any) {
	res := &RespDone{}
	if len(args) > 0 && args[0] != nil {
		res.Data = args[0]
		if len(args) > 1 {
			if c, ok := args[1].(int); ok {
				res.Count = c
			}
		}
	}

	render.JSON(w, r, res)
}

func apiFail(w http.ResponseWriter, r *http.Request, status int, err any) {
	res := render.M{
		"status": status,
	}
	switch ret := err.(type) {
	case error:
		res["message"] = ret.Error()
	case fmt.Stringer:
		res["message"] = ret.String()
	case string:
		res["message"] = ret
	}
	if status >= http.StatusInternalServerError {
		logger().Infow("api fail", "path", r.URL.Path, "status", status, "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, res)
}

// apiError maps domain errors to HTTP statuses.
func apiError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generate.ErrUnavailable):
		// Callers only see the generic retry message.
		apiFail(w, r, http.StatusBadGateway, generate.ErrUnavailable)
	case errors.Is(err, undo.ErrBusy):
		apiFail(w, r, http.StatusConflict, err)
	case errors.Is(err, history.ErrNoDocument):
		apiFail(w, r, http.StatusUnprocessableEntity, err)
	case errors.Is(err, export.ErrUnsupportedType):
		apiFail(w, r, http.StatusUnsupportedMediaType, err)
	case errors.Is(err, export.ErrInvalidImage),
		errors.Is(err, export.ErrUnsupportedFont),
		errors.Is(err, settings.ErrInvalidValue),
		errors.Is(err, sink.ErrInvalidName):
		apiFail(w, r, http.StatusBadRequest, err)
	case errors.Is(err, settings.ErrUnknownSetting):
		apiFail(w, r, http.StatusNotFound, err)
	case errors.Is(err, settings.ErrClosed):
		apiFail(w, r, http.StatusServiceUnavailable, err)
	case errors.Is(err, clipboard.ErrUnsupported):
		apiFail(w, r, http.StatusNotImplemented, err)
	default:
		apiFail(w, r, http.StatusInternalServerError, err)
	}
}

// writeDocument sends a rendered file as a download.
func writeDocument(w http.ResponseWriter, doc app.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// saveRequested reports whether the client asked for the sink (?save=1)
// instead of a download.
func saveRequested(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("save"))
	return v
}

func (s *Server) deliver(w http.ResponseWriter, r *http.Request, doc app.Document) {
	if !saveRequested(r) {
		writeDocument(w, doc)
		return
	}
	loc, err := s.app.Save(r.Context(), doc)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiOk(w, r, M{"name": doc.Name, "location": loc, "bytes": len(doc.Data)})
}

func parseFormat(w http.ResponseWriter, r *http.Request) (export.Format, bool) {
	f, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return "", false
	}
	return f, true
}
