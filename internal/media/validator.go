// Package media validates incoming video files before any resource is
// allocated for them.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

// Validator accepts or rejects an input file by extension and size.
// Checks are pure; rejection is always the invalid_input category and is
// never conflated with processing failures.
type Validator struct {
	allowed  map[string]bool
	maxBytes int64
}

// NewValidator builds a validator from the configured allowed extensions
// (without dots, e.g. "mp4") and size ceiling in bytes.
func NewValidator(extensions []string, maxBytes int64) *Validator {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Validator{allowed: allowed, maxBytes: maxBytes}
}

// Check validates a declared filename and size.
func (v *Validator) Check(filename string, size int64) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !v.allowed[ext] {
		msg := fmt.Sprintf("file extension %q is not supported (allowed: %s)", ext, v.allowedList())
		return model.NewCategoryError(model.ErrInvalidInput, msg, nil)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		msg := fmt.Sprintf("file size %d exceeds the %d byte limit", size, v.maxBytes)
		return model.NewCategoryError(model.ErrInvalidInput, msg, nil)
	}
	return nil
}

// CheckFile validates a file on disk by its actual name and size.
func (v *Validator) CheckFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return model.NewCategoryError(model.ErrInvalidInput, fmt.Sprintf("cannot access input file: %s", path), err)
	}
	return v.Check(info.Name(), info.Size())
}

func (v *Validator) allowedList() string {
	exts := make([]string, 0, len(v.allowed))
	for ext := range v.allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
