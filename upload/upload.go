// Package upload pre-validates client-declared file metadata before any
// byte reaches external storage, and sanitizes client-controlled filenames.
// Declared MIME type and filename extension must both pass the image
// allow-list; neither is trusted on its own.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/amberrentals/bookingcore/internal/util"
)

// MaxFileSize caps uploads at 5 MiB.
const MaxFileSize = 5 << 20

const prefixLen = 8

var (
	// ErrFileTooLarge indicates the declared size exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
	// ErrTypeNotAllowed indicates the MIME type or extension is not an
	// allowed image type.
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// FileInfo describes an upload as declared by the client.
type FileInfo struct {
	Filename string
	MIMEType string
	Size     int64
}

// Validate rejects the upload unless the declared MIME type and the
// filename extension both pass the allow-list and the size is under the cap.
func Validate(f FileInfo) error {
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, f.Size, MaxFileSize)
	}
	if !allowedMIMETypes[strings.ToLower(f.MIMEType)] {
		return fmt.Errorf("%w: mime type %q", ErrTypeNotAllowed, f.MIMEType)
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: extension %q", ErrTypeNotAllowed, ext)
	}
	return nil
}

// SanitizeFilename strips path components and non-alphanumeric characters
// from a client-controlled filename and prepends a random prefix, so the
// stored name is unique and carries nothing the client chose verbatim.
func SanitizeFilename(name string) (string, error) {
	base := filepath.Base(name)
	ext := alnumOnly(strings.ToLower(filepath.Ext(base)))
	if ext != "" {
		ext = "." + ext
	}
	cleaned := alnumOnly(util.Normalize(strings.TrimSuffix(base, filepath.Ext(base))))
	if cleaned == "" {
		cleaned = "upload"
	}

	prefix, err := util.ReferenceChars(prefixLen)
	if err != nil {
		return "", fmt.Errorf("generating filename prefix: %w", err)
	}
	return prefix + "_" + cleaned + ext, nil
}

func alnumOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
