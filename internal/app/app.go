// Package app opens the stores and services selected by the configuration
// and hands them to the CLI, the HTTP API and the history browser.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/config"
	"github.com/yiblet/proboost/internal/generate"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/settings"
	"github.com/yiblet/proboost/internal/sink"
	"github.com/yiblet/proboost/internal/store"
	"github.com/yiblet/proboost/internal/store/dbstore"
	"github.com/yiblet/proboost/internal/store/memstore"
	"github.com/yiblet/proboost/internal/store/redisstore"
	"github.com/yiblet/proboost/internal/undo"
	"github.com/yiblet/proboost/internal/zlog"
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// App holds everything a command needs for one process.
type App struct {
	Config   *config.Config
	KV       store.KV
	History  *history.Manager
	Settings *settings.Settings
	Sink     sink.Sink

	// Generator overrides the Gemini client built from the API key.
	Generator generate.Generator

	mu      sync.Mutex
	screens map[history.FeatureType]*Screen
}

// OpenKV opens the storage backend named by cfg.Backend.
func OpenKV(cm *config.ConfigManager, cfg *config.Config) (store.KV, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		return dbstore.NewSQLiteStore(cm.ResolveDBPath(cfg))
	case config.BackendRedis:
		return redisstore.Open(cfg.RedisURI, redisstore.DefaultHash)
	case config.BackendMemory:
		return memstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", cfg.Backend)
	}
}

// OpenSink returns the S3 sink when a bucket is configured and a
// directory sink otherwise.
func OpenSink(ctx context.Context, cm *config.ConfigManager, cfg *config.Config) (sink.Sink, error) {
	if cfg.S3.Enabled() {
		return sink.OpenS3(ctx, cfg.S3)
	}
	return sink.NewFileSink(cm.ResolveExportDir(cfg)), nil
}

// Open opens the configured backend and loads history and settings.
func Open(ctx context.Context, cm *config.ConfigManager, cfg *config.Config) (*App, error) {
	kv, err := OpenKV(cm, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	snk, err := OpenSink(ctx, cm, cfg)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to open export sink: %w", err)
	}
	logger().Debugw("app open", "backend", cfg.Backend, "limit", cfg.HistoryLimit)
	return New(cfg, kv, snk), nil
}

// New assembles an App over an already opened store and sink.
func New(cfg *config.Config, kv store.KV, snk sink.Sink) *App {
	return &App{
		Config:   cfg,
		KV:       kv,
		History:  history.Open(kv, history.WithLimit(cfg.HistoryLimit)),
		Settings: settings.Open(kv),
		Sink:     snk,
		screens:  make(map[history.FeatureType]*Screen),
	}
}

// Gen returns the text generator. Without an override it builds a Gemini
// client from the user key, falling back to the configured platform key.
func (a *App) Gen(ctx context.Context) (generate.Generator, error) {
	if a.Generator != nil {
		return a.Generator, nil
	}
	return generate.NewGemini(ctx, a.Settings.EffectiveAPIKey(a.Config.APIKey), a.Config.Model)
}

// Screen returns the session for a feature, creating it on first use.
// Screens live as long as the App.
func (a *App) Screen(ft history.FeatureType) *Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.screens[ft]
	if !ok {
		s = undo.NewScreen(string(ft), nil, a.generateFor(ft), cloneFields)
		a.screens[ft] = s
	}
	return s
}

// Close releases the settings handle and the store.
func (a *App) Close() error {
	return errors.Join(a.Settings.Close(), a.KV.Close())
}
