package batch

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/rs/zerolog"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// InputRecord is one image file found in the input directory.
type InputRecord struct {
	Index int
	Path  string
	Image models.Image
	Error error
}

// Reader lists the image files at the root of a directory, in name order.
// Subdirectories and other files are skipped.
type Reader struct {
	fsys   fs.FS
	logger *zerolog.Logger
}

func NewReader(fsys fs.FS, logger *zerolog.Logger) *Reader {
	return &Reader{fsys: fsys, logger: logger}
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// List returns the image file names without reading them.
func (r *Reader) List() ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadAll streams the images. A file that cannot be read produces a record
// with Error set; listing failures produce a single error record.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		names, err := r.List()
		if err != nil {
			select {
			case out <- InputRecord{Error: err}:
			case <-ctx.Done():
			}
			return
		}

		r.logger.Debug().Int("images", len(names)).Msg("input directory listed")

		for i, name := range names {
			record := InputRecord{Index: i + 1, Path: name}

			data, err := fs.ReadFile(r.fsys, name)
			if err != nil {
				record.Error = fmt.Errorf("read %s: %w", name, err)
				r.logger.Warn().Err(err).Str("file", name).Msg("failed to read image")
			} else {
				record.Image = models.Image{Name: name, Data: data}
			}

			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
