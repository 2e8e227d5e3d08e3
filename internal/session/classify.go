package session

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/amezav/filedrop/internal/models"
)

var documentExts = map[string]bool{
	"doc":  true,
	"docx": true,
	"odt":  true,
	"pdf":  true,
	"rtf":  true,
	"txt":  true,
}

var spreadsheetExts = map[string]bool{
	"csv":  true,
	"ods":  true,
	"xls":  true,
	"xlsx": true,
}

// classify buckets a file by its extension alone. Content is never
// sniffed; unknown extensions land in ClassOther.
func classify(name string) (models.Classification, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	mime := mimeForExt(ext)

	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.ClassImage, mime
	case spreadsheetExts[ext]:
		return models.ClassSpreadsheet, mime
	case documentExts[ext]:
		return models.ClassDocument, mime
	default:
		return models.ClassOther, mime
	}
}

func mimeForExt(ext string) string {
	// The filetype registry keys types by canonical extension
	switch ext {
	case "jpeg":
		ext = "jpg"
	case "tiff":
		ext = "tif"
	}

	if t := filetype.GetType(ext); t != types.Unknown {
		return t.MIME.Value
	}

	// Extensions the filetype matchers don't cover
	switch ext {
	case "txt":
		return "text/plain"
	case "csv":
		return "text/csv"
	case "rtf":
		return "application/rtf"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
