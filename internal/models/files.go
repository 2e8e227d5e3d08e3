package models

import (
	"github.com/google/uuid"
)

// Classification groups files by what the conversion engine can do
// with them. It is derived from the file extension only.
type Classification string

const (
	ClassImage       Classification = "image"
	ClassDocument    Classification = "document"
	ClassSpreadsheet Classification = "spreadsheet"
	ClassOther       Classification = "other"
)

// PendingFile is one entry in the session working set.
type PendingFile struct {
	ID   uuid.UUID
	Name string
	Data []byte

	Class Classification
	MIME  string

	// Data URL thumbnail for image files. Empty when the file is not
	// an image or when preview generation failed.
	PreviewDataURL string
}

// ConversionResult is the encoded output for a single file.
type ConversionResult struct {
	Filename string
	MIME     string
	DataURL  string
	Size     int
}
