package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"path"
	"strings"
	"time"
)

var (
	ErrNoOPF      = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epub: invalid package document")
	ErrEmptySpine = errors.New("epub: no content in spine")
)

// opfPackage mirrors the OPF package document.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title       []dcElement `xml:"title"`
	Creator     []dcElement `xml:"creator"`
	Language    []dcElement `xml:"language"`
	Identifier  []dcElement `xml:"identifier"`
	Publisher   []dcElement `xml:"publisher"`
	Date        []dcElement `xml:"date"`
	Description []dcElement `xml:"description"`
	Subject     []dcElement `xml:"subject"`
	Rights      []dcElement `xml:"rights"`
	Meta        []opfMeta   `xml:"meta"`
}

type dcElement struct {
	ID      string `xml:"id,attr"`
	Content string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Name     string `xml:"name,attr"`    // EPUB 2 style
	Content  string `xml:"content,attr"` // EPUB 2 style
	Value    string `xml:",chardata"`    // EPUB 3 style
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"` // NCX ID for EPUB 2
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// parseOPF parses the package document at opfPath and returns the package
// plus the directory against which manifest hrefs resolve.
func parseOPF(zr *zip.Reader, opfPath string) (*Package, string, error) {
	f := findArchiveFile(zr, opfPath)
	if f == nil {
		return nil, "", ErrNoOPF
	}

	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	data, err := readArchiveFile(f)
	if err != nil {
		return nil, "", err
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, "", ErrInvalidOPF
	}

	pkg := &Package{
		Version:  opf.Version,
		Metadata: convertMetadata(&opf.Metadata),
		Manifest: convertManifest(&opf.Manifest),
		Spine:    convertSpine(&opf.Spine),
	}

	if len(pkg.Spine) == 0 {
		return nil, "", ErrEmptySpine
	}

	return pkg, baseDir, nil
}

// firstContent returns the trimmed content of the first element, or "".
func firstContent(elems []dcElement) string {
	if len(elems) == 0 {
		return ""
	}
	return strings.TrimSpace(elems[0].Content)
}

func convertMetadata(m *opfMetadata) Metadata {
	meta := Metadata{
		Title:       firstContent(m.Title),
		Language:    firstContent(m.Language),
		Identifier:  firstContent(m.Identifier),
		Publisher:   firstContent(m.Publisher),
		Date:        firstContent(m.Date),
		Description: firstContent(m.Description),
		Rights:      firstContent(m.Rights),
	}

	for _, c := range m.Creator {
		if s := strings.TrimSpace(c.Content); s != "" {
			meta.Creator = append(meta.Creator, s)
		}
	}
	for _, s := range m.Subject {
		if subj := strings.TrimSpace(s.Content); subj != "" {
			meta.Subjects = append(meta.Subjects, subj)
		}
	}

	// EPUB 3 records the modification date as a meta property.
	for _, mt := range m.Meta {
		if mt.Property == "dcterms:modified" {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(mt.Value)); err == nil {
				meta.Modified = t
			}
		}
	}

	return meta
}

func convertManifest(m *opfManifest) map[string]ManifestItem {
	manifest := make(map[string]ManifestItem, len(m.Items))
	for _, item := range m.Items {
		mi := ManifestItem{
			ID:        item.ID,
			Href:      item.Href,
			MediaType: item.MediaType,
		}
		if item.Properties != "" {
			mi.Properties = strings.Fields(item.Properties)
		}
		manifest[item.ID] = mi
	}
	return manifest
}

func convertSpine(s *opfSpine) []SpineItem {
	spine := make([]SpineItem, 0, len(s.ItemRefs))
	for _, ref := range s.ItemRefs {
		spine = append(spine, SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear != "no", // default is linear
		})
	}
	return spine
}
