// Package media converts image files into the payload form the remote
// analysis API expects: a MIME type resolved from the extension plus
// base64-encoded content, ready for embedding in a data URL.
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Accepted image extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Extension→MIME table for accepted extensions. Accepted extensions missing
// from this table fall back to image/jpeg.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const fallbackMIME = "image/jpeg"

// Payload is the encoded form of one image, owned by a single in-flight
// request and discarded once the remote call returns.
type Payload struct {
	MIMEType string
	Data     string // base64 (std encoding)
	Size     int64  // raw size in bytes, for display only

	raw []byte // kept for dimension probing
}

// IsImage reports whether path has an accepted image extension
// (case-insensitive).
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// MIMEType resolves the MIME type for path from the extension table.
func MIMEType(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return fallbackMIME
}

// EncodeFile reads path and returns its payload. Read failures (missing
// file, permissions, I/O) are returned as-is; the caller retries them the
// same way it retries remote failures.
func EncodeFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return &Payload{
		MIMEType: MIMEType(path),
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     int64(len(data)),
		raw:      data,
	}, nil
}

// DataURL renders the payload as a data URL for multimodal message parts.
func (p *Payload) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}
