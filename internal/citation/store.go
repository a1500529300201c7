package citation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("challan document not found")

// FileStore keeps rendered challans as challan_<id>.pdf in one directory.
type FileStore struct {
	dir    string
	logger *zerolog.Logger
}

func NewFileStore(dir string, logger *zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func FileName(id string) string {
	return "challan_" + id + ".pdf"
}

func (s *FileStore) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid challan id %q: %w", id, err)
	}
	return filepath.Join(s.dir, FileName(id)), nil
}

// Save writes the document and returns its path.
func (s *FileStore) Save(ctx context.Context, id string, document []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.path(id)
	if err != nil {
		return "", err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, document, 0o644); err != nil {
		return "", fmt.Errorf("write challan %s: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write challan %s: %w", id, err)
	}

	s.logger.Debug().
		Str("challan_id", id).
		Str("path", path).
		Int("bytes", len(document)).
		Msg("challan saved")

	return path, nil
}

func (s *FileStore) Load(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read challan %s: %w", id, err)
	}
	return data, nil
}

// UUIDGenerator issues random (version 4) challan ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
