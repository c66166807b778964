package validation

import (
	"fmt"
	"net/http"
	"strings"
)

// MaxImageBytes is the upload ceiling for poll option images and avatars.
const MaxImageBytes = 5 * 1024 * 1024

// ValidateImage checks an upload against size and content-type limits before
// anything is sent to storage. The declared type is ignored if the sniffed
// bytes disagree.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("image is empty")
	}

	if len(data) > MaxImageBytes {
		return fmt.Errorf("image must not exceed 5MB")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("file must be an image, got %s", contentType)
	}

	return nil
}

// ImageContentType sniffs the content type of validated image bytes.
func ImageContentType(data []byte) string {
	return http.DetectContentType(data)
}
