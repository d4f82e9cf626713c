package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yiblet/proboost/internal/generate"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/undo"
)

// Result is what a feature screen shows after a successful generation.
type Result struct {
	ItemID string `json:"itemId"`
	Text   string `json:"text"`
}

// Screen is a feature screen whose fields are the raw form payload.
type Screen = undo.Screen[json.RawMessage, Result]

func cloneFields(f json.RawMessage) json.RawMessage {
	if f == nil {
		return nil
	}
	return bytes.Clone(f)
}

// generateFor validates the form against the feature's input type, asks
// the generator, and records the outcome in history.
func (a *App) generateFor(ft history.FeatureType) undo.GenerateFunc[json.RawMessage, Result] {
	return func(ctx context.Context, fields json.RawMessage) (Result, error) {
		in, err := history.DecodeInput(ft, fields)
		if err != nil {
			return Result{}, err
		}
		prompt, err := generate.Prompt(ft.Label(), in)
		if err != nil {
			return Result{}, err
		}
		gen, err := a.Gen(ctx)
		if err != nil {
			return Result{}, err
		}
		text, err := gen.Generate(ctx, prompt)
		if err != nil {
			return Result{}, err
		}

		entry, err := history.NewEntry(in, decodeOutput(ft, text))
		if err != nil {
			return Result{}, fmt.Errorf("failed to record %s: %w", ft, err)
		}
		item := a.History.Add(entry, "")
		doc, err := history.DocumentText(item)
		if err != nil {
			doc = text
		}
		return Result{ItemID: item.ID, Text: doc}, nil
	}
}

// decodeOutput keeps structured replies for features that have an output
// shape. Anything else is stored as the reply text.
func decodeOutput(ft history.FeatureType, text string) any {
	raw := []byte(cleanJSON(text))
	switch ft {
	case history.ContentGeneration, history.NewsToPost:
		var out history.PostsOutput
		if json.Unmarshal(raw, &out) == nil && len(out.Posts) > 0 {
			return out
		}
	case history.JobSearch, history.JobFetch:
		var out history.JobsOutput
		if json.Unmarshal(raw, &out) == nil && len(out.Jobs) > 0 {
			return out
		}
	}
	return text
}

// cleanJSON strips a Markdown code fence around a JSON reply.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
