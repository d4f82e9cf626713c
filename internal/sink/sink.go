// Package sink delivers exported files to their destination.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/zlog"
)

// ErrInvalidName is returned for names that are empty or escape the sink root.
var ErrInvalidName = errors.New("invalid file name")

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// Sink stores a named output and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// cleanName rejects names that are empty, absolute or climb out of the root.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if clean == "." || clean == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}

// FileSink writes outputs under a local directory.
type FileSink struct {
	dir string
}

// NewFileSink returns a sink rooted at dir. The directory is created on
// first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Dir returns the sink root.
func (s *FileSink) Dir() string {
	return s.dir
}

// Put writes data to <dir>/<name> and returns the file path.
func (s *FileSink) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger().Debugw("file sink put", "path", dst, "bytes", len(data))
	return dst, nil
}
