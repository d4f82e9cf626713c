// Package mockboard provides an in-memory clipboard for tests.
package mockboard

import (
	"bytes"
	"sync"
)

// MockClipboard keeps clipboard contents in memory.
type MockClipboard struct {
	mu          sync.Mutex
	data        []byte
	writes      int
	err         error
	unsupported bool
}

// New creates an empty MockClipboard.
func New() *MockClipboard {
	return &MockClipboard{}
}

func (m *MockClipboard) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return bytes.Clone(m.data), nil
}

func (m *MockClipboard) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = bytes.Clone(data)
	m.writes++
	return nil
}

// IsSupported is true unless SetUnsupported was called.
func (m *MockClipboard) IsSupported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unsupported
}

// Text returns the current contents.
func (m *MockClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

// Writes counts successful writes.
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Fail makes Read and Write return err. A nil err clears the failure.
func (m *MockClipboard) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetUnsupported simulates a headless system.
func (m *MockClipboard) SetUnsupported() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsupported = true
}
