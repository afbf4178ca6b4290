// Package ingest turns raw uploads into plain text for extraction. Each
// format parser is best-effort: a corrupt file degrades to an empty string so
// a mixed batch never aborts on one bad document.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// UnsupportedFormatError is returned for file extensions no parser handles.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}

// Normalize dispatches on the file extension and returns extracted plain
// text. Unknown extensions fail; parser-internal failures do not.
func Normalize(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md":
		return decodeText(data), nil
	case ".pdf":
		text, err := parsePDF(data)
		if err != nil {
			log.Warn("PDF parse failed", "file", filename, "err", err)
			return "", nil
		}
		return text, nil
	case ".docx":
		text, err := parseDocx(data)
		if err != nil {
			log.Warn("DOCX parse failed", "file", filename, "err", err)
			return "", nil
		}
		return text, nil
	case ".pptx":
		text, err := parsePptx(data)
		if err != nil {
			log.Warn("PPTX parse failed", "file", filename, "err", err)
			return "", nil
		}
		return text, nil
	case ".html", ".htm":
		return HTMLToText(data), nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}
