package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/flatorders/src/logger"
)

// allowedClientContentTypes are the client-declared MIME types accepted
// for a statement upload. Clients are sloppy about CSV MIME types, so the
// list is deliberately broad; the magic-byte check below is the real gate.
var allowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// ValidateClientContentType checks the Content-Type the client declared
// for the uploaded part.
func ValidateClientContentType(contentType string) error {
	base := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedClientContentTypes[base] {
		logger.L.Warn("Rejected client-declared content type", "contentType", contentType)
		return fmt.Errorf("client-declared file type %q is not allowed for statement upload", contentType)
	}
	return nil
}

// ValidateStatementContent sniffs the first 512 bytes of the upload and
// rejects anything that is not text-shaped. The read position is restored
// so the parser sees the whole file.
func ValidateStatementContent(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading upload for content sniffing: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding upload after content sniffing: %w", err)
	}

	detected := http.DetectContentType(buf[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])

	// text/plain is what CSV almost always sniffs as. octet-stream is
	// allowed because an empty or very short upload sniffs that way; the
	// CSV parser rejects real binary content anyway.
	allowed := map[string]bool{
		"text/plain":               true,
		"text/csv":                 true,
		"application/csv":          true,
		"application/octet-stream": true,
	}
	if !allowed[detected] {
		logger.L.Warn("Rejected upload by sniffed content type", "detectedContentType", detected)
		return detected, fmt.Errorf("detected file content type %q is not consistent with a CSV statement", detected)
	}
	return detected, nil
}
