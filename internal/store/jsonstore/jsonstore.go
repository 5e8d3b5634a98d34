package jsonstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// JSON-backed storage. One file per key, human-readable, portable.
// Writes go through a temp file + rename so a crash never leaves a torn file.
// No locking; fine for a local single-user tool.

const fileExt = ".json"

// File keeps each key in <Dir>/<key>.json.
type File struct {
	Dir string
}

// New returns a File rooted at dir. An empty dir means the working directory.
func New(dir string) (*File, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		dir = wd
	}
	return &File{Dir: dir}, nil
}

// Path returns the file backing key.
func (f *File) Path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.Dir, key+fileExt), nil
}

func (f *File) Get(key string) ([]byte, bool, error) {
	p, err := f.Path(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	return b, true, nil
}

func (f *File) Set(key string, value []byte) error {
	p, err := f.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
