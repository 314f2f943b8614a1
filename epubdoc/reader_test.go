package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/paginate"
	"github.com/tsawler/folio/schedule"
)

var _ schedule.GeometrySource = (*Reader)(nil)

// zipEntry is one file of a synthetic EPUB archive.
type zipEntry struct {
	name  string
	data  string
	store bool // mimetype must be written uncompressed
}

// buildEPUB assembles a ZIP archive from entries, in order.
func buildEPUB(t *testing.T, entries []zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		var (
			fw  io.Writer
			err error
		)
		if e.store {
			fw, err = w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Store})
		} else {
			fw, err = w.Create(e.name)
		}
		if err != nil {
			t.Fatalf("creating %s: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.data)); err != nil {
			t.Fatalf("writing %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}

	return buf.Bytes()
}

// writeEPUB writes the archive to a temp file and returns its path.
func writeEPUB(t *testing.T, entries []zipEntry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(path, buildEPUB(t, entries), 0o644); err != nil {
		t.Fatalf("writing epub: %v", err)
	}
	return path
}

const (
	mimetypeData  = "application/epub+zip"
	containerData = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	opfData = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Voyages</dc:title>
    <dc:creator>A. Navigator</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="bookid">urn:isbn:9780000000001</dc:identifier>
  </metadata>
  <manifest>
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="cover" linear="no"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

	coverData = `<html><head><title>Cover</title></head><body><p>Cover artwork</p></body></html>`

	chapter1Data = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter 1</title></head>
<body>
<h1>Introduction</h1>
<p>It was the best of boats.</p>
<p>It sailed at dawn.</p>
</body>
</html>`

	chapter2Data = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head></head>
<body>
<h1>Conclusion</h1>
<p>The voyage ended well.</p>
<ul><li>Anchor stowed</li><li>Sails furled</li></ul>
</body>
</html>`
)

// testBook is a two-chapter book with a non-linear cover.
func testBook(t *testing.T) []zipEntry {
	t.Helper()
	return []zipEntry{
		{name: "mimetype", data: mimetypeData, store: true},
		{name: "META-INF/container.xml", data: containerData},
		{name: "OEBPS/content.opf", data: opfData},
		{name: "OEBPS/cover.xhtml", data: coverData},
		{name: "OEBPS/chapter1.xhtml", data: chapter1Data},
		{name: "OEBPS/chapter2.xhtml", data: chapter2Data},
	}
}

// drmBook returns the fixture book carrying the given META-INF DRM entry.
func drmBook(t *testing.T, name, data string) []zipEntry {
	t.Helper()
	book := testBook(t)
	out := make([]zipEntry, 0, len(book)+1)
	out = append(out, book[0], book[1], zipEntry{name: name, data: data})
	return append(out, book[2:]...)
}

// ============================================================================
// Opening
// ============================================================================

func TestOpen(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	if r.ChapterCount() != 2 {
		t.Errorf("ChapterCount() = %d, want 2", r.ChapterCount())
	}
	if r.BlockCount() != 6 {
		t.Errorf("BlockCount() = %d, want 6", r.BlockCount())
	}
}

func TestOpenReader(t *testing.T) {
	data := buildEPUB(t, testBook(t))

	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenReader() returned error: %v", err)
	}
	defer r.Close()

	if r.ChapterCount() != 2 {
		t.Errorf("ChapterCount() = %d, want 2", r.ChapterCount())
	}
}

func TestMetadata(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	meta := r.Metadata()
	if meta.Title != "Voyages" {
		t.Errorf("Title = %q, want %q", meta.Title, "Voyages")
	}
	if len(meta.Creator) != 1 || meta.Creator[0] != "A. Navigator" {
		t.Errorf("Creator = %v, want [A. Navigator]", meta.Creator)
	}
	if meta.Language != "en" {
		t.Errorf("Language = %q, want %q", meta.Language, "en")
	}
	if meta.Identifier != "urn:isbn:9780000000001" {
		t.Errorf("Identifier = %q, want %q", meta.Identifier, "urn:isbn:9780000000001")
	}
}

// ============================================================================
// Block extraction
// ============================================================================

func TestBlocksConcatenateChapters(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	want := []model.BlockKind{
		model.KindHeading, model.KindParagraph, model.KindParagraph,
		model.KindHeading, model.KindParagraph, model.KindList,
	}

	blocks := r.Blocks()
	if len(blocks) != len(want) {
		t.Fatalf("len(Blocks()) = %d, want %d", len(blocks), len(want))
	}
	for i, k := range want {
		if blocks[i].Kind != k {
			t.Errorf("blocks[%d].Kind = %v, want %v", i, blocks[i].Kind, k)
		}
	}

	if blocks[0].Text != "Introduction" {
		t.Errorf("blocks[0].Text = %q, want %q", blocks[0].Text, "Introduction")
	}
	if blocks[3].Text != "Conclusion" {
		t.Errorf("blocks[3].Text = %q, want %q", blocks[3].Text, "Conclusion")
	}
	if len(blocks[5].Items) != 2 {
		t.Errorf("len(blocks[5].Items) = %d, want 2", len(blocks[5].Items))
	}
}

func TestChapters(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	chapters := r.Chapters()
	if len(chapters) != 2 {
		t.Fatalf("len(Chapters()) = %d, want 2", len(chapters))
	}

	// Titles come from the document title, then the first heading.
	if chapters[0].Title != "Chapter 1" {
		t.Errorf("chapters[0].Title = %q, want %q", chapters[0].Title, "Chapter 1")
	}
	if chapters[1].Title != "Conclusion" {
		t.Errorf("chapters[1].Title = %q, want %q", chapters[1].Title, "Conclusion")
	}

	if chapters[0].Start != 0 {
		t.Errorf("chapters[0].Start = %d, want 0", chapters[0].Start)
	}
	if chapters[1].Start != 3 {
		t.Errorf("chapters[1].Start = %d, want 3", chapters[1].Start)
	}

	// Index preserves the spine position, including skipped items.
	if chapters[0].Index != 1 || chapters[1].Index != 2 {
		t.Errorf("chapter indices = %d/%d, want 1/2", chapters[0].Index, chapters[1].Index)
	}
}

func TestNonLinearSpineItemsSkipped(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	for _, b := range r.Blocks() {
		if b.Text == "Cover artwork" {
			t.Error("non-linear cover content should not appear in the block flow")
		}
	}
}

func TestChapterForBlock(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	tests := []struct {
		block int
		want  int
	}{
		{0, 0},
		{2, 0},
		{3, 1},
		{5, 1},
		{-1, -1},
		{6, -1},
	}

	for _, tt := range tests {
		if got := r.ChapterForBlock(tt.block); got != tt.want {
			t.Errorf("ChapterForBlock(%d) = %d, want %d", tt.block, got, tt.want)
		}
	}
}

// ============================================================================
// Geometry
// ============================================================================

func TestBlockGeometries(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	geoms, err := r.BlockGeometries()
	if err != nil {
		t.Fatalf("BlockGeometries() returned error: %v", err)
	}
	if len(geoms) != r.BlockCount() {
		t.Fatalf("len(geoms) = %d, want %d", len(geoms), r.BlockCount())
	}

	prev := 0.0
	for i, g := range geoms {
		if g.Index != i {
			t.Errorf("geoms[%d].Index = %d, want %d", i, g.Index, i)
		}
		if g.Offset < prev {
			t.Errorf("geoms[%d].Offset = %v decreases below %v", i, g.Offset, prev)
		}
		prev = g.Offset
	}

	// Offsets are cumulative across the chapter boundary.
	if geoms[3].Offset <= geoms[0].Offset {
		t.Error("second chapter should start below the first chapter's content")
	}
}

func TestBookPaginatesAsOneFlow(t *testing.T) {
	r, err := Open(writeEPUB(t, testBook(t)))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer r.Close()

	geoms, err := r.BlockGeometries()
	if err != nil {
		t.Fatalf("BlockGeometries() returned error: %v", err)
	}

	res, err := paginate.ComputeBreaks(geoms, 150)
	if err != nil {
		t.Fatalf("ComputeBreaks() returned error: %v", err)
	}
	if err := res.Validate(len(geoms)); err != nil {
		t.Errorf("Validate() returned error: %v", err)
	}
	if res.TotalPages < 2 {
		t.Errorf("TotalPages = %d, want at least 2 at capacity 150", res.TotalPages)
	}
}

func TestOpenWithConfigWidth(t *testing.T) {
	narrow := measure.DefaultConfig()
	narrow.ContentWidth = 200

	path := writeEPUB(t, testBook(t))

	wideReader, err := Open(path)
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer wideReader.Close()

	narrowReader, err := OpenWithConfig(path, narrow)
	if err != nil {
		t.Fatalf("OpenWithConfig() returned error: %v", err)
	}
	defer narrowReader.Close()

	wide, _ := wideReader.BlockGeometries()
	nar, _ := narrowReader.BlockGeometries()

	last := len(wide) - 1
	if nar[last].Offset < wide[last].Offset {
		t.Errorf("narrow layout should be at least as tall: narrow %v, wide %v",
			nar[last].Offset, wide[last].Offset)
	}
}

// ============================================================================
// Rejection
// ============================================================================

func TestDRMRejectionRights(t *testing.T) {
	book := drmBook(t, "META-INF/rights.xml",
		`<?xml version="1.0"?><rights xmlns="http://ns.adobe.com/adept"><encryptedKey>k</encryptedKey></rights>`)

	if _, err := Open(writeEPUB(t, book)); !errors.Is(err, ErrDRMProtected) {
		t.Errorf("Open() error = %v, want ErrDRMProtected", err)
	}
}

func TestDRMRejectionEncryptedContent(t *testing.T) {
	book := drmBook(t, "META-INF/encryption.xml", `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes256-cbc"/>
    <CipherData><CipherReference URI="OEBPS/chapter1.xhtml"/></CipherData>
  </EncryptedData>
</encryption>`)

	if _, err := Open(writeEPUB(t, book)); !errors.Is(err, ErrDRMProtected) {
		t.Errorf("Open() error = %v, want ErrDRMProtected", err)
	}
}

func TestFontObfuscationIsNotDRM(t *testing.T) {
	book := drmBook(t, "META-INF/encryption.xml", `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding/obfuscation"/>
    <CipherData><CipherReference URI="OEBPS/fonts/serif.otf"/></CipherData>
  </EncryptedData>
</encryption>`)

	r, err := Open(writeEPUB(t, book))
	if err != nil {
		t.Fatalf("Open() returned error: %v (font obfuscation is not DRM)", err)
	}
	r.Close()
}

func TestOpenRejectsBadArchives(t *testing.T) {
	notZip := filepath.Join(t.TempDir(), "invalid.epub")
	if err := os.WriteFile(notZip, []byte("not a zip file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"not a zip", notZip, ErrInvalidArchive},
		{
			"wrong mimetype",
			writeEPUB(t, []zipEntry{
				{name: "mimetype", data: "text/plain", store: true},
				{name: "META-INF/container.xml", data: containerData},
			}),
			ErrInvalidMimetype,
		},
		{
			"missing container",
			writeEPUB(t, []zipEntry{
				{name: "mimetype", data: mimetypeData, store: true},
				{name: "OEBPS/content.opf", data: opfData},
			}),
			ErrNoContainer,
		},
		{
			"empty spine",
			writeEPUB(t, []zipEntry{
				{name: "mimetype", data: mimetypeData, store: true},
				{name: "META-INF/container.xml", data: containerData},
				{name: "OEBPS/content.opf", data: `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Empty</dc:title></metadata>
  <manifest><item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/></manifest>
  <spine></spine>
</package>`},
			}),
			ErrEmptySpine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.path); !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.epub")); err == nil {
		t.Error("Open() should fail for a missing file")
	}
}
