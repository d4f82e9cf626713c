package web

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/export"
)

// maxUpload caps ingest uploads.
const maxUpload = 10 << 20

type exportTextReq struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	Font  string `json:"font"`
}

type bundleReq struct {
	Name  string        `json:"name"`
	Posts []export.Post `json:"posts"`
}

type imageReq struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

func (s *Server) exportText(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFormat(w, r)
	if !ok {
		return
	}
	var req exportTextReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case export.FormatPDF:
		font := req.Font
		if font == "" {
			font = s.app.Config.Font
		}
		data, err = export.PDF(req.Text, export.Options{Font: font, Title: req.Title})
	case export.FormatText, export.FormatDOCX:
		data, err = s.app.RenderText(req.Text, req.Title, f)
	default:
		apiFail(w, r, http.StatusBadRequest, fmt.Sprintf("cannot export text as %s", f))
		return
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	s.deliver(w, r, app.Document{Name: export.FileName(req.Title, f), ContentType: f.ContentType(), Data: data})
}

func (s *Server) postBundle(w http.ResponseWriter, r *http.Request) {
	var req bundleReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	if len(req.Posts) == 0 {
		apiFail(w, r, http.StatusBadRequest, "no posts to bundle")
		return
	}
	data, err := export.Bundle(req.Posts)
	if err != nil {
		apiError(w, r, err)
		return
	}
	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = "posts"
	}
	s.deliver(w, r, app.Document{
		Name:        export.FileName(name, export.FormatZIP),
		ContentType: export.FormatZIP.ContentType(),
		Data:        data,
	})
}

func (s *Server) postImage(w http.ResponseWriter, r *http.Request) {
	var req imageReq
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	data, err := export.Image(req.Data)
	if err != nil {
		apiError(w, r, err)
		return
	}
	s.deliver(w, r, app.Document{
		Name:        export.ImageName(req.Name),
		ContentType: export.FormatJPG.ContentType(),
		Data:        data,
	})
}

func (s *Server) postIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		apiFail(w, r, http.StatusBadRequest, fmt.Errorf("missing upload: %w", err))
		return
	}
	defer file.Close()

	// Reject by extension before reading the body.
	if _, err := export.DetectType(header.Filename); err != nil {
		apiError(w, r, err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		apiFail(w, r, http.StatusBadRequest, err)
		return
	}
	text, err := export.Ingest(header.Filename, data)
	if err != nil {
		apiFail(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	apiOk(w, r, M{"name": header.Filename, "text": text})
}
