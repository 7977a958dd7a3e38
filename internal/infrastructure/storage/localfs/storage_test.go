package localfs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestListAndRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "b.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "gamma")

	flat, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	keys, err := flat.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"a.txt", "b.pdf"}) {
		t.Fatalf("unexpected keys %v", keys)
	}

	deep, _ := New(dir, WithRecursive())
	keys, _ = deep.List(context.Background())
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"a.txt", "b.pdf", "nested/c.txt"}) {
		t.Fatalf("unexpected recursive keys %v", keys)
	}

	data, err := deep.Read(context.Background(), "nested/c.txt")
	if err != nil || string(data) != "gamma" {
		t.Fatalf("Read() = %q, %v", data, err)
	}
}

func TestReadRejectsEscapesAndOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.txt"), "0123456789")

	s, _ := New(dir, WithMaxFileSize(4))
	if _, err := s.Read(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected error for path escape")
	}
	if _, err := s.Read(context.Background(), "big.txt"); err == nil {
		t.Fatalf("expected error for oversized file")
	}
}

func TestNewRequiresDirectory(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	file := filepath.Join(t.TempDir(), "f.txt")
	writeFile(t, file, "x")
	if _, err := New(file); err == nil {
		t.Fatalf("expected error for non-directory")
	}
}
