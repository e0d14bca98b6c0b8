package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/papercheck/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "id_paper.pdf", strings.NewReader("%PDF-1.7")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := s.Open(context.Background(), "id_paper.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(raw) != "%PDF-1.7" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Save(context.Background(), "a.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.pdf" {
		t.Fatalf("unexpected directory content: %v", entries)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"", "..", "../x.pdf", `a\b.pdf`, filepath.Join("sub", "x.pdf")} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Save(%q) error = %v, want invalid input", key, err)
		}
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Open(context.Background(), "missing.pdf"); !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
