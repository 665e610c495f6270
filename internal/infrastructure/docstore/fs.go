package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

// FSStore keeps incoming documents in one directory and relocates them to a
// processed directory after extraction, so the incoming listing doubles as
// the work queue.
type FSStore struct {
	incomingDir  string
	processedDir string
}

func NewFSStore(incomingDir string, processedDir string) (*FSStore, error) {
	if strings.TrimSpace(incomingDir) == "" {
		return nil, errors.New("incoming directory is required")
	}
	if strings.TrimSpace(processedDir) == "" {
		return nil, errors.New("processed directory is required")
	}

	for _, dir := range []string{incomingDir, processedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrapf(err, "create document directory %q", dir)
		}
	}

	return &FSStore{
		incomingDir:  incomingDir,
		processedDir: processedDir,
	}, nil
}

func (s *FSStore) List(ctx context.Context) ([]ports.DocumentFile, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.incomingDir)
	if err != nil {
		return nil, errs.Wrap(err, "list incoming documents")
	}

	files := make([]ports.DocumentFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ports.DocumentFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC().Format(time.RFC3339Nano),
		})
	}
	return files, nil
}

func (s *FSStore) Read(ctx context.Context, name string) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	path, err := s.safeJoin(s.incomingDir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.ErrDocumentNotFound
		}
		return nil, errs.Wrapf(err, "read document %q", name)
	}
	return data, nil
}

func (s *FSStore) MoveToProcessed(ctx context.Context, name string) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	src, err := s.safeJoin(s.incomingDir, name)
	if err != nil {
		return err
	}
	dst, err := s.safeJoin(s.processedDir, name)
	if err != nil {
		return err
	}

	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ports.ErrDocumentNotFound
		}
		return errs.Wrapf(err, "move document %q to processed", name)
	}
	return nil
}

func (s *FSStore) Ping(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	if _, err := os.Stat(s.incomingDir); err != nil {
		return errs.Wrap(err, "stat incoming directory")
	}
	return nil
}

func (s *FSStore) Location() string {
	return s.incomingDir
}

// safeJoin rejects names that escape the base directory.
func (s *FSStore) safeJoin(base string, name string) (string, error) {
	cleaned := filepath.Base(strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", errors.New("invalid document name")
	}
	return filepath.Join(base, cleaned), nil
}
