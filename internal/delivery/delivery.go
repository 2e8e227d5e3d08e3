// Package delivery hands finished conversion results to the user. The
// directory sink is the service analogue of triggering one browser
// download per converted file.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amezav/filedrop/internal/dataurl"
	"github.com/amezav/filedrop/internal/models"
)

type Sink interface {
	Deliver(ctx context.Context, result models.ConversionResult) error
}

// DirSink writes each result into a downloads directory under its
// computed output filename.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("downloads directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf(
			"failed to create downloads directory %s: %w",
			dir,
			err,
		)
	}

	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Deliver(
	ctx context.Context,
	result models.ConversionResult,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Continue with delivery
	}

	_, data, err := dataurl.Decode(result.DataURL)
	if err != nil {
		return fmt.Errorf(
			"failed to decode result for %s: %w",
			result.Filename,
			err,
		)
	}

	// Result names come from user supplied filenames, keep them
	// inside the downloads directory
	path := filepath.Join(s.dir, filepath.Base(result.Filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write download %s: %w", path, err)
	}

	slog.Debug("Delivered download", "path", path, "bytes", len(data))
	return nil
}

// Remove deletes a previously delivered download. Missing files are
// not an error.
func (s *DirSink) Remove(filename string) error {
	path := filepath.Join(s.dir, filepath.Base(filename))

	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove download %s: %w", path, err)
	}

	return nil
}
