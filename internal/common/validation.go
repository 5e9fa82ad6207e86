package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/docintel/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// ValidateSourceFile checks a candidate document before any processing:
// allowed extension, non-empty, size cap, and a safe base filename.
// Failures are FILE_VALIDATION errors and are not retried.
func ValidateSourceFile(path string, maxSizeBytes int64) error {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return NewFileValidationError("empty filename", nil)
	}
	if strings.Contains(base, "..") || containsControl(base) {
		return NewFileValidationError(fmt.Sprintf("unsafe filename: %q", base), nil)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return NewFileValidationError("unsupported extension",
			ValidationError{Field: "extension", Value: ext, Message: "not an allowed document format"})
	}

	info, err := os.Stat(path)
	if err != nil {
		return NewFileValidationError(fmt.Sprintf("stat %s", path), err)
	}
	if info.IsDir() {
		return NewFileValidationError(fmt.Sprintf("not a regular file: %s", path), nil)
	}
	if info.Size() == 0 {
		return NewFileValidationError("empty file", nil)
	}
	if maxSizeBytes > 0 && info.Size() > maxSizeBytes {
		return NewFileValidationError("file too large",
			ValidationError{Field: "size", Value: info.Size(),
				Message: fmt.Sprintf("exceeds the %d byte limit", maxSizeBytes)})
	}
	return nil
}

func containsControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
