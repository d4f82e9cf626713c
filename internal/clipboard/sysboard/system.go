// Package sysboard implements the system clipboard. It prefers the native
// clipboard from golang.design/x/clipboard and falls back to the
// pbcopy/xclip/xsel commands when that cannot be initialized.
package sysboard

import (
	"bytes"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"github.com/yiblet/proboost/internal/zlog"
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// command is one external clipboard tool.
type command struct {
	read  []string
	write []string
}

var commands = []command{
	{read: []string{"pbpaste"}, write: []string{"pbcopy"}},
	{read: []string{"xclip", "-selection", "clipboard", "-o"}, write: []string{"xclip", "-selection", "clipboard"}},
	{read: []string{"xsel", "--clipboard", "--output"}, write: []string{"xsel", "--clipboard", "--input"}},
	{read: []string{"wl-paste", "--no-newline"}, write: []string{"wl-copy"}},
}

// SystemClipboard is the desktop clipboard.
type SystemClipboard struct {
	once   sync.Once
	native bool
	cmd    *command
}

// New creates a SystemClipboard. Detection runs on first use.
func New() *SystemClipboard {
	return &SystemClipboard{}
}

func (s *SystemClipboard) detect() {
	s.once.Do(func() {
		err := clipboard.Init()
		if err == nil {
			s.native = true
			return
		}
		logger().Debugw("native clipboard unavailable", "err", err)
		for i := range commands {
			if _, err := exec.LookPath(commands[i].write[0]); err == nil {
				s.cmd = &commands[i]
				return
			}
		}
	})
}

// IsSupported reports whether a native clipboard or a clipboard command
// is available.
func (s *SystemClipboard) IsSupported() bool {
	s.detect()
	return s.native || s.cmd != nil
}

func (s *SystemClipboard) Read() ([]byte, error) {
	s.detect()
	switch {
	case s.native:
		return clipboard.Read(clipboard.FmtText), nil
	case s.cmd != nil:
		var out bytes.Buffer
		c := exec.Command(s.cmd.read[0], s.cmd.read[1:]...)
		c.Stdout = &out
		if err := c.Run(); err != nil {
			return nil, fmt.Errorf("failed to run %s: %w", s.cmd.read[0], err)
		}
		return out.Bytes(), nil
	}
	return nil, fmt.Errorf("no clipboard available")
}

func (s *SystemClipboard) Write(data []byte) error {
	s.detect()
	switch {
	case s.native:
		clipboard.Write(clipboard.FmtText, data)
		return nil
	case s.cmd != nil:
		c := exec.Command(s.cmd.write[0], s.cmd.write[1:]...)
		c.Stdin = bytes.NewReader(data)
		if err := c.Run(); err != nil {
			return fmt.Errorf("failed to run %s: %w", s.cmd.write[0], err)
		}
		return nil
	}
	return fmt.Errorf("no clipboard available")
}
