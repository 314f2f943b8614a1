package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
)

var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
)

// containerXML mirrors META-INF/container.xml, which points at the OPF
// package document.
type containerXML struct {
	XMLName   xml.Name  `xml:"container"`
	Version   string    `xml:"version,attr"`
	Rootfiles rootfiles `xml:"rootfiles"`
}

type rootfiles struct {
	Rootfile []rootfile `xml:"rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// parseContainer locates and parses META-INF/container.xml, returning the
// archive path of the OPF file.
func parseContainer(zr *zip.Reader) (string, error) {
	f := findArchiveFile(zr, "META-INF/container.xml")
	if f == nil {
		return "", ErrNoContainer
	}

	data, err := readArchiveFile(f)
	if err != nil {
		return "", err
	}

	var container containerXML
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", ErrInvalidContainer
	}

	for _, rf := range container.Rootfiles.Rootfile {
		if rf.FullPath == "" {
			continue
		}
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			return rf.FullPath, nil
		}
	}

	// No media-type match: fall back to the first declared rootfile.
	if len(container.Rootfiles.Rootfile) > 0 && container.Rootfiles.Rootfile[0].FullPath != "" {
		return container.Rootfiles.Rootfile[0].FullPath, nil
	}

	return "", ErrNoRootfile
}

// findArchiveFile returns the archive entry with the given name, or nil.
func findArchiveFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// readArchiveFile reads one archive entry fully.
func readArchiveFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
