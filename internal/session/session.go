// Package session implements the upload surface: the working set of
// pending files plus the current conversion form state. All updates go
// through explicit methods so the surface is testable without any
// rendering environment.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/amezav/filedrop/internal/models"
	"github.com/amezav/filedrop/internal/preview"
)

// Input is a raw file handed to the session, either from a file picker
// or a drag and drop. Both paths are the same call.
type Input struct {
	Name string
	Data []byte
}

type Session struct {
	mu       sync.Mutex
	files    []models.PendingFile
	config   models.ConversionConfig
	previews preview.Generator
}

// New creates an empty session. The generator may be nil, in which
// case no previews are produced.
func New(previews preview.Generator) *Session {
	return &Session{
		previews: previews,
	}
}

// AddFiles classifies each input and appends it to the working set in
// input order. Files are never merged or deduplicated. Image previews
// are generated one file at a time; a preview failure leaves the entry
// in place with no thumbnail.
func (s *Session) AddFiles(ctx context.Context, inputs []Input) {
	for _, in := range inputs {
		class, mime := classify(in.Name)

		pf := models.PendingFile{
			ID:    uuid.New(),
			Name:  in.Name,
			Data:  in.Data,
			Class: class,
			MIME:  mime,
		}

		if strings.HasPrefix(mime, "image/") && s.previews != nil {
			previewURL, err := s.previews.Preview(ctx, in.Name, in.Data)
			if err != nil {
				slog.Debug(
					"Preview generation failed, file kept without thumbnail",
					"file", in.Name,
					"error", err,
				)
			} else {
				pf.PreviewDataURL = previewURL
			}
		}

		s.mu.Lock()
		s.files = append(s.files, pf)
		s.mu.Unlock()
	}
}

// RemoveFile removes exactly the entry with the matching id, keeping
// the relative order of the rest. Unknown ids are a no-op.
func (s *Session) RemoveFile(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return
		}
	}
}

// Files returns a snapshot of the working set in insertion order.
func (s *Session) Files() []models.PendingFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.PendingFile, len(s.files))
	copy(snapshot, s.files)
	return snapshot
}

// Len reports the number of pending files.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// SetConfig replaces the current form state. Values persist until the
// next SetConfig; there is no reset between conversions.
func (s *Session) SetConfig(config models.ConversionConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// Config returns the current form state.
func (s *Session) Config() models.ConversionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}
