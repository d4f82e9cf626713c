package clipboard_test

import (
	"errors"
	"testing"

	"github.com/yiblet/proboost/internal/clipboard"
	"github.com/yiblet/proboost/internal/clipboard/mockboard"
)

func TestCopyPaste(t *testing.T) {
	cb := mockboard.New()

	n, err := clipboard.Copy(cb, "line 1\nline 2")
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if n != 13 {
		t.Errorf("Copy returned %d bytes, want 13", n)
	}

	got, err := clipboard.Paste(cb)
	if err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	if got != "line 1\nline 2" {
		t.Errorf("Paste = %q", got)
	}
}

func TestCopyEmpty(t *testing.T) {
	cb := mockboard.New()
	if _, err := clipboard.Copy(cb, ""); err != nil {
		t.Fatalf("Copy empty failed: %v", err)
	}
	if cb.Writes() != 1 {
		t.Errorf("expected one write, got %d", cb.Writes())
	}
	if cb.Text() != "" {
		t.Errorf("expected empty clipboard, got %q", cb.Text())
	}
}

func TestCopyUnsupported(t *testing.T) {
	cb := mockboard.New()
	cb.SetUnsupported()

	if _, err := clipboard.Copy(cb, "x"); !errors.Is(err, clipboard.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := clipboard.Paste(cb); !errors.Is(err, clipboard.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := clipboard.Copy(nil, "x"); !errors.Is(err, clipboard.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for nil clipboard, got %v", err)
	}
}

func TestCopyWriteError(t *testing.T) {
	cb := mockboard.New()
	boom := errors.New("boom")
	cb.Fail(boom)

	if _, err := clipboard.Copy(cb, "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped write error, got %v", err)
	}
	cb.Fail(nil)
	if _, err := clipboard.Copy(cb, "x"); err != nil {
		t.Errorf("Copy after reset failed: %v", err)
	}
}
