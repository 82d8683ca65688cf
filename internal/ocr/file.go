package ocr

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the document class inferred from a file name
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// DefaultExtensions are the file extensions accepted when none are configured
var DefaultExtensions = Extensions{".png", ".jpg", ".jpeg", ".pdf"}

// SelectedFile is a document acquired by the user and awaiting submission.
// It is never modified after creation; a new selection replaces it.
type SelectedFile struct {
	Name string
	Size int64
	Kind Kind
	data []byte
}

// NewSelectedFile wraps the acquired bytes. The data slice is copied.
func NewSelectedFile(name string, data []byte) *SelectedFile {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &SelectedFile{
		Name: name,
		Size: int64(len(buf)),
		Kind: KindOf(name),
		data: buf,
	}
}

// Data returns a copy of the file contents
func (f *SelectedFile) Data() []byte {
	buf := make([]byte, len(f.data))
	copy(buf, f.data)
	return buf
}

// SizeKB is the size rounded to the nearest kilobyte, as shown on the file card
func (f *SelectedFile) SizeKB() int64 {
	return (f.Size + 512) / 1024
}

// KindOf classifies a file name by extension, case-insensitively.
// Anything that is not a PDF is treated as an image.
func KindOf(name string) Kind {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return KindPDF
	}
	return KindImage
}

// Extensions is a normalized set of accepted file extensions
type Extensions []string

// ParseExtensions parses a comma separated extension list such as ".png,.jpg,pdf"
func ParseExtensions(list string) (Extensions, error) {
	var exts Extensions
	for _, raw := range strings.Split(list, ",") {
		ext := strings.ToLower(strings.TrimSpace(raw))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.ContainsAny(ext[1:], "./\\") {
			return nil, fmt.Errorf("invalid extension %q", raw)
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return nil, fmt.Errorf("no extensions in %q", list)
	}
	return exts, nil
}

// Accepts reports whether the file name carries one of the extensions
func (e Extensions) Accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range e {
		if ext == allowed {
			return true
		}
	}
	return false
}

// String renders the list in the form used by an HTML accept attribute
func (e Extensions) String() string {
	return strings.Join(e, ",")
}
