package epubdoc

import (
	"time"

	"github.com/tsawler/folio/model"
)

// Package is the parsed OPF package document: what the EPUB contains and in
// what order it reads.
type Package struct {
	Metadata Metadata
	Manifest map[string]ManifestItem // keyed by ID
	Spine    []SpineItem
	Version  string // "2.0" or "3.0"
}

// Metadata holds the Dublin Core metadata of an EPUB.
type Metadata struct {
	Title       string
	Creator     []string
	Language    string
	Identifier  string
	Publisher   string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	Modified    time.Time
}

// ManifestItem is one file declared by the EPUB manifest.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string // "nav", "cover-image", etc.
}

// SpineItem is one content document in reading order.
type SpineItem struct {
	IDRef  string
	Linear bool // part of the main reading order
}

// Chapter is the extracted content of one linear spine item. Chapters flow
// continuously: pagination runs over the concatenated block sequence, and a
// chapter's blocks occupy indices Start through Start+len(Blocks)-1 of that
// sequence.
type Chapter struct {
	Index  int    // position in the spine, 0-based
	ID     string // manifest ID
	Href   string // archive path of the source document
	Title  string // document title or first heading, may be empty
	Start  int    // index of the chapter's first block in the flat sequence
	Blocks []model.Block
}
