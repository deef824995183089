// Package source reads script text for the interpreter.
package source

import (
	sterrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/oarkflow/errors"
)

var (
	ErrNotFound = errors.New("source not found")
	ErrNotText  = errors.New("source is not valid UTF-8 text")
)

// Reader yields the full text stored at path.
type Reader interface {
	Read(path string) (string, error)
}

// FileReader reads from the local filesystem, optionally below Root.
type FileReader struct {
	Root string
}

func (r FileReader) Read(path string) (string, error) {
	full := path
	if r.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(r.Root, path)
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		if sterrors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}
	return decode(path, raw)
}

// MemoryReader serves in-memory files and defers to Fallback for anything else.
type MemoryReader struct {
	Files    map[string]string
	Fallback Reader
}

func (r *MemoryReader) Read(path string) (string, error) {
	if text, ok := r.Files[filepath.Clean(path)]; ok {
		return decode(path, []byte(text))
	}
	if text, ok := r.Files[path]; ok {
		return decode(path, []byte(text))
	}
	if r.Fallback != nil {
		return r.Fallback.Read(path)
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

func decode(path string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s", ErrNotText, path)
	}
	return string(raw), nil
}
