package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileReader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.spl"), []byte("func main() {}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bin.spl"), []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := FileReader{Root: dir}

	text, err := r.Read("main.spl")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if text != "func main() {}" {
		t.Fatalf("unexpected text %q", text)
	}
	if _, err := r.Read("missing.spl"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Read("bin.spl"); !errors.Is(err, ErrNotText) {
		t.Fatalf("expected ErrNotText, got %v", err)
	}
}

func TestMemoryReaderFallback(t *testing.T) {
	inner := &MemoryReader{Files: map[string]string{"lib.spl": "func f() {}"}}
	r := &MemoryReader{Files: map[string]string{"main.spl": "func main() {}"}, Fallback: inner}

	if text, err := r.Read("lib.spl"); err != nil || text != "func f() {}" {
		t.Fatalf("fallback read = %q, %v", text, err)
	}
	if _, err := r.Read("other.spl"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
