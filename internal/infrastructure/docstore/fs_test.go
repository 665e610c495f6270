package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

func setupStore(t *testing.T) (*FSStore, string, string) {
	t.Helper()

	root := t.TempDir()
	incoming := filepath.Join(root, "incoming")
	processed := filepath.Join(root, "processed")

	store, err := NewFSStore(incoming, processed)
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	return store, incoming, processed
}

func TestListSkipsHiddenAndDirs(t *testing.T) {
	t.Parallel()

	store, incoming, _ := setupStore(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(incoming, "report.txt"), []byte("content"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(incoming, ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write hidden: %v", err)
	}
	if err := os.Mkdir(filepath.Join(incoming, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 1 || files[0].Name != "report.txt" {
		t.Fatalf("files = %+v, want only report.txt", files)
	}
}

func TestReadNotFound(t *testing.T) {
	t.Parallel()

	store, _, _ := setupStore(t)

	_, err := store.Read(context.Background(), "missing.txt")
	if !errors.Is(err, ports.ErrDocumentNotFound) {
		t.Fatalf("error = %v, want ErrDocumentNotFound", err)
	}
}

func TestMoveToProcessedRemovesFromListing(t *testing.T) {
	t.Parallel()

	store, incoming, processed := setupStore(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(incoming, "report.txt"), []byte("content"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := store.MoveToProcessed(ctx, "report.txt"); err != nil {
		t.Fatalf("MoveToProcessed() error = %v", err)
	}

	files, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %+v, want empty", files)
	}
	if _, err := os.Stat(filepath.Join(processed, "report.txt")); err != nil {
		t.Fatalf("processed file missing: %v", err)
	}
}

func TestReadRejectsPathTraversal(t *testing.T) {
	t.Parallel()

	store, incoming, _ := setupStore(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(incoming, "report.txt"), []byte("content"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	// Base() strips the traversal; the read resolves inside incoming or fails.
	if _, err := store.Read(ctx, "../incoming/report.txt"); err != nil {
		if !errors.Is(err, ports.ErrDocumentNotFound) {
			t.Fatalf("error = %v", err)
		}
	}
	if _, err := store.Read(ctx, ".."); err == nil {
		t.Fatal("Read(..) error = nil, want error")
	}
}
