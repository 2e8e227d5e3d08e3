package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/amezav/filedrop/internal/models"
)

type stubGenerator struct {
	fail  bool
	calls []string
}

func (g *stubGenerator) Preview(
	ctx context.Context,
	name string,
	data []byte,
) (string, error) {
	g.calls = append(g.calls, name)
	if g.fail {
		return "", errors.New("unreadable blob")
	}
	return "data:image/jpeg;base64,AAAA", nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		filename      string
		expectedClass models.Classification
		expectedMIME  string // empty = don't check
	}{
		{"PNG uppercase ext", "photo.PNG", models.ClassImage, "image/png"},
		{"JPEG", "scan.jpeg", models.ClassImage, "image/jpeg"},
		{"Word document", "report.docx", models.ClassDocument, ""},
		{"PDF", "paper.pdf", models.ClassDocument, "application/pdf"},
		{"Plain text", "notes.txt", models.ClassDocument, "text/plain"},
		{"Spreadsheet", "data.xlsx", models.ClassSpreadsheet, ""},
		{"CSV", "data.csv", models.ClassSpreadsheet, "text/csv"},
		{"Archive", "bundle.zip", models.ClassOther, "application/zip"},
		{"No extension", "README", models.ClassOther, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, mime := classify(tt.filename)
			if class != tt.expectedClass {
				t.Errorf(
					"classify(%q) class = %s; want %s",
					tt.filename, class, tt.expectedClass,
				)
			}
			if tt.expectedMIME != "" && mime != tt.expectedMIME {
				t.Errorf(
					"classify(%q) mime = %s; want %s",
					tt.filename, mime, tt.expectedMIME,
				)
			}
		})
	}
}

func TestAddFilesAppendsInOrder(t *testing.T) {
	s := New(&stubGenerator{})

	s.AddFiles(context.Background(), []Input{
		{Name: "a.txt", Data: []byte("a")},
		{Name: "b.txt", Data: []byte("b")},
	})
	s.AddFiles(context.Background(), []Input{
		{Name: "c.txt", Data: []byte("c")},
		{Name: "a.txt", Data: []byte("a")}, // identical to the first, must not dedupe
	})

	files := s.Files()
	expected := []string{"a.txt", "b.txt", "c.txt", "a.txt"}
	if len(files) != len(expected) {
		t.Fatalf("got %d files; want %d", len(files), len(expected))
	}
	for i, name := range expected {
		if files[i].Name != name {
			t.Errorf("files[%d].Name = %s; want %s", i, files[i].Name, name)
		}
	}

	if files[0].ID == files[3].ID {
		t.Error("duplicate files must get distinct ids")
	}
}

func TestPreviewOnlyForImages(t *testing.T) {
	gen := &stubGenerator{}
	s := New(gen)

	s.AddFiles(context.Background(), []Input{
		{Name: "report.docx", Data: []byte("doc")},
		{Name: "photo.png", Data: []byte("png")},
	})

	if len(gen.calls) != 1 || gen.calls[0] != "photo.png" {
		t.Errorf("preview calls = %v; want [photo.png]", gen.calls)
	}

	files := s.Files()
	if files[0].PreviewDataURL != "" {
		t.Error("document must not get a preview")
	}
	if files[1].PreviewDataURL == "" {
		t.Error("image must get a preview")
	}
}

func TestPreviewFailureKeepsFile(t *testing.T) {
	s := New(&stubGenerator{fail: true})

	s.AddFiles(context.Background(), []Input{
		{Name: "photo.png", Data: []byte("broken")},
	})

	files := s.Files()
	if len(files) != 1 {
		t.Fatalf("got %d files; want 1", len(files))
	}
	if files[0].PreviewDataURL != "" {
		t.Error("failed preview must leave PreviewDataURL empty")
	}
}

func TestRemoveFile(t *testing.T) {
	s := New(nil)
	s.AddFiles(context.Background(), []Input{
		{Name: "a.txt"},
		{Name: "b.txt"},
		{Name: "c.txt"},
	})

	files := s.Files()
	s.RemoveFile(files[1].ID)

	remaining := s.Files()
	if len(remaining) != 2 {
		t.Fatalf("got %d files; want 2", len(remaining))
	}
	if remaining[0].Name != "a.txt" || remaining[1].Name != "c.txt" {
		t.Errorf(
			"remaining = [%s %s]; want [a.txt c.txt]",
			remaining[0].Name, remaining[1].Name,
		)
	}

	// Unknown id is a no-op
	s.RemoveFile(uuid.New())
	if s.Len() != 2 {
		t.Errorf("Len() = %d after removing unknown id; want 2", s.Len())
	}
}

func TestConfigPersists(t *testing.T) {
	s := New(nil)

	cfg := models.ConversionConfig{
		TargetFormat: "jpg",
		Resize:       &models.Dimensions{Width: 500},
		Quality:      80,
	}
	s.SetConfig(cfg)

	got := s.Config()
	if got.TargetFormat != "jpg" || got.Quality != 80 {
		t.Errorf("Config() = %+v; want %+v", got, cfg)
	}
	if got.Resize == nil || got.Resize.Width != 500 {
		t.Errorf("Config().Resize = %+v; want Width 500", got.Resize)
	}
}
