package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalUploader writes resume files to a local directory and returns an
// opaque file reference. A hosted document store would slot in behind the
// same interface.
type LocalUploader struct {
	dir string
}

func NewLocalUploader(dir string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalUploader{dir: dir}, nil
}

func (u *LocalUploader) Store(ctx context.Context, candidateID, filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s%s", candidateID, uuid.New().String(), filepath.Ext(filename))
	path := filepath.Join(u.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store resume: %w", err)
	}
	return "file://" + path, nil
}
