package app

import (
	"context"
	"fmt"

	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/history"
)

// Document is one rendered download.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render exports a history item. Text, PDF and DOCX use the item's
// document text; ZIP bundles the item's posts. Images are never stored in
// history, so FormatJPG is rejected.
func (a *App) Render(item history.HistoryItem, f export.Format) (Document, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case export.FormatZIP:
		posts, perr := item.Posts()
		if perr != nil {
			return Document{}, perr
		}
		data, err = export.Bundle(posts)
	case export.FormatText, export.FormatPDF, export.FormatDOCX:
		text, terr := history.DocumentText(item)
		if terr != nil {
			return Document{}, terr
		}
		data, err = a.RenderText(text, item.Title, f)
	default:
		return Document{}, fmt.Errorf("cannot export %s items as %s", item.FeatureType, f)
	}
	if err != nil {
		return Document{}, err
	}
	return Document{Name: export.FileName(item.Title, f), ContentType: f.ContentType(), Data: data}, nil
}

// RenderText encodes free text as a text, PDF or DOCX document.
func (a *App) RenderText(text, title string, f export.Format) ([]byte, error) {
	switch f {
	case export.FormatText:
		return export.Text(text), nil
	case export.FormatPDF:
		return export.PDF(text, export.Options{Font: a.Config.Font, Title: title})
	case export.FormatDOCX:
		return export.DOCX(text)
	default:
		return nil, fmt.Errorf("cannot render text as %s", f)
	}
}

// Save hands a document to the configured sink and returns its location.
func (a *App) Save(ctx context.Context, doc Document) (string, error) {
	loc, err := a.Sink.Put(ctx, doc.Name, doc.ContentType, doc.Data)
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", doc.Name, err)
	}
	logger().Infow("export saved", "name", doc.Name, "bytes", len(doc.Data), "location", loc)
	return loc, nil
}
