// Package format provides document format detection for the folio library.
package format

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// HTML indicates an HTML or XHTML document.
	HTML
	// Markdown indicates a Markdown document.
	Markdown
	// EPUB indicates an EPUB book.
	EPUB
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	case EPUB:
		return "EPUB"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case HTML:
		return ".html"
	case Markdown:
		return ".md"
	case EPUB:
		return ".epub"
	default:
		return ""
	}
}

// Detect determines file format from the filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".md", ".markdown":
		return Markdown
	case ".epub":
		return EPUB
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format. Markdown is
// plain text and has no signature, and a ZIP archive could hold any
// container format, so both come back Unknown; use DetectFromReader to
// inspect archives.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// ZIP magic (EPUB is a ZIP archive): PK\x03\x04
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		// The archive contents decide; caller should use DetectFromReader.
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if trimmed == "" {
		return false
	}

	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "<!DOCTYPE HTML"):
		return true
	case strings.HasPrefix(upper, "<HTML"):
		return true
	case strings.HasPrefix(upper, "<?XML"):
		// An XML declaration followed by an html element is XHTML.
		return strings.Contains(upper[:min(500, len(upper))], "<HTML")
	}

	return false
}

// DetectFromReader inspects the content to determine format. This is
// more reliable than extension-based detection for HTML and EPUB, but
// plain-text Markdown always comes back Unknown.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	// Check for a ZIP-based format
	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size)
	}

	if detectHTMLMagic(magic) {
		return HTML, nil
	}

	return Unknown, nil
}

// detectZIPFormat inspects a ZIP archive for EPUB markers.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	hasContainer := false
	for _, f := range zr.File {
		switch f.Name {
		case "mimetype":
			rc, err := f.Open()
			if err != nil {
				continue
			}
			buf := make([]byte, 64)
			n, _ := rc.Read(buf)
			rc.Close()
			if strings.HasPrefix(strings.TrimSpace(string(buf[:n])), "application/epub+zip") {
				return EPUB, nil
			}
			// A mimetype naming some other container format rules out EPUB.
			return Unknown, nil
		case "META-INF/container.xml":
			hasContainer = true
		}
	}

	// Books missing the mimetype entry still carry the OCF container.
	if hasContainer {
		return EPUB, nil
	}

	return Unknown, nil
}

// DetectFile determines the format of the file at path. The extension
// is tried first; when it is not conclusive the content is sniffed.
func DetectFile(path string) (Format, error) {
	if f := Detect(path); f != Unknown {
		return f, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Unknown, err
	}

	return DetectFromReader(file, info.Size())
}
