// Package zlog holds the process-wide sugared zap logger.
// Packages fetch it through a private logger() helper so that tests run
// against a no-op logger unless main installs a real one.
package zlog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.SugaredLogger]

func init() {
	current.Store(zap.NewNop().Sugar())
}

// Set installs the logger returned by Get. A nil logger resets to no-op.
func Set(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	current.Store(l)
}

// Get returns the installed logger.
func Get() *zap.SugaredLogger {
	return current.Load()
}

// New builds the CLI logger: production JSON at warn level, or a
// development console logger at debug level.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
