// Package generate is the client side of the external text-generation
// service. It renders prompts and maps every service failure to one
// generic error the screens can show.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/yiblet/proboost/internal/zlog"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrUnavailable wraps every generation failure.
var ErrUnavailable = errors.New("generation service unavailable, please retry")

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// contentAPI is the part of the genai client Gemini calls.
type contentAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates text with the Gemini API. Failures are not retried.
type Gemini struct {
	api   contentAPI
	model string
}

var newClient = genai.NewClient

// NewGemini creates a client for apiKey. An empty model selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}
	client, err := newClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create genai client: %v", ErrUnavailable, err)
	}
	return newGemini(client.Models, model), nil
}

func newGemini(api contentAPI, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{api: api, model: model}
}

// Model returns the model name.
func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.api.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		logger().Warnw("gemini generate fail", "model", g.model, "err", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		logger().Warnw("gemini empty response", "model", g.model)
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return text, nil
}

// Prompt renders a task line followed by one "key: value" line per
// non-empty field, in key order. fields is any JSON-encodable struct or map.
func Prompt(task string, fields any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("fields must be an object: %w", err)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(strings.TrimSpace(task))
	b.WriteString("\n")
	for _, k := range keys {
		v := formatValue(m[k])
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	return b.String(), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := formatValue(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}
