package storage

import (
	"fmt"
	"net/http"
	"strings"
)

// AllowedContentTypes lists the photo formats accepted for reports.
var AllowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ValidateContentType checks if the content type is allowed.
func (s *MinIOService) ValidateContentType(contentType string) error {
	return ValidateContentType(contentType)
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return ValidateFileSize(sizeBytes, s.maxFileSize)
}

// ValidateContentType rejects anything but the allowed photo formats.
func ValidateContentType(contentType string) error {
	if _, ok := AllowedContentTypes[normalizeContentType(contentType)]; !ok {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize rejects empty files and files above maxBytes.
func ValidateFileSize(sizeBytes, maxBytes int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxBytes)
	}
	return nil
}

// DetectImageContentType sniffs data and returns the normalized type and the
// file extension to store it under.
func DetectImageContentType(data []byte) (string, string, error) {
	contentType := normalizeContentType(http.DetectContentType(data))
	ext, ok := AllowedContentTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("content type %q is not allowed", contentType)
	}
	return contentType, ext, nil
}

func normalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}
