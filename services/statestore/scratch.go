package statestore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"wledremote/errcode"
)

// MemScratch is scratch memory held in RAM, for tests and simulators.
type MemScratch struct {
	mu  sync.Mutex
	buf []byte
}

func (m *MemScratch) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buf == nil {
		return nil, errcode.NotFound
	}
	return append([]byte(nil), m.buf...), nil
}

func (m *MemScratch) Write(b []byte) error {
	m.mu.Lock()
	m.buf = append([]byte(nil), b...)
	m.mu.Unlock()
	return nil
}

// Wipe simulates a full power loss.
func (m *MemScratch) Wipe() {
	m.mu.Lock()
	m.buf = nil
	m.mu.Unlock()
}

// FileScratch keeps the blob in a file. Place it on a tmpfs (e.g. /run) so
// it survives suspend but not power loss.
type FileScratch struct {
	Path string
}

func (f FileScratch) Read() ([]byte, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errcode.NotFound
	}
	return b, err
}

// Write replaces the blob atomically so a halt mid-write leaves the old one.
func (f FileScratch) Write(b []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}
