package models

import (
	"github.com/google/uuid"
)

// BatchConvertRequest asks the daemon to stage the listed files and
// convert each of them with the embedded config.
type BatchConvertRequest struct {
	RequestID uuid.UUID `json:"requestId"`

	// Paths to the input files, relative to env variable
	// 'DIR_INBOX_ROOT'
	FilePaths []string `json:"filePaths"`

	Config ConversionConfig `json:"config"`
}

// PurgeRequest asks the daemon to delete previously delivered outputs
// from the downloads directory.
type PurgeRequest struct {
	RequestID uuid.UUID `json:"requestId"`
	Filenames []string  `json:"filenames"`
}
