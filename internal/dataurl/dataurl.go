// Package dataurl builds and parses base64 data URLs, the interchange
// format for previews and conversion results.
package dataurl

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const scheme = "data:"

// Encode wraps raw bytes as a 'data:<mime>;base64,<payload>' string.
func Encode(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return scheme + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode parses a data URL back into its mime type and raw bytes.
func Decode(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, scheme) {
		return "", nil, fmt.Errorf("not a data URL")
	}

	meta, payload, found := strings.Cut(s[len(scheme):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URL: missing payload separator")
	}

	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}

	return mime, data, nil
}
