package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"strings"
)

// ErrDRMProtected reports an EPUB whose content documents are encrypted.
// Encrypted content cannot be measured, so such books are rejected at open.
var ErrDRMProtected = errors.New("epub: DRM-protected content cannot be processed")

// encryptionXML mirrors META-INF/encryption.xml.
type encryptionXML struct {
	XMLName       xml.Name        `xml:"encryption"`
	EncryptedData []encryptedData `xml:"EncryptedData"`
}

type encryptedData struct {
	EncryptionMethod encryptionMethod `xml:"EncryptionMethod"`
	CipherData       cipherData       `xml:"CipherData"`
}

type encryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type cipherData struct {
	CipherReference cipherReference `xml:"CipherReference"`
}

type cipherReference struct {
	URI string `xml:"URI,attr"`
}

// checkForDRM returns ErrDRMProtected when the archive carries DRM.
// META-INF/rights.xml (Adobe ADEPT) always rejects; encryption.xml rejects
// only when content documents are encrypted, since font obfuscation alone is
// not DRM.
func checkForDRM(zr *zip.Reader) error {
	for _, f := range zr.File {
		switch f.Name {
		case "META-INF/rights.xml":
			return ErrDRMProtected

		case "META-INF/encryption.xml":
			encrypted, err := hasEncryptedContent(f)
			if err != nil {
				// Unparseable encryption manifest: assume DRM.
				return ErrDRMProtected
			}
			if encrypted {
				return ErrDRMProtected
			}
		}
	}
	return nil
}

// hasEncryptedContent reports whether encryption.xml declares any encrypted
// content document.
func hasEncryptedContent(f *zip.File) (bool, error) {
	data, err := readArchiveFile(f)
	if err != nil {
		return false, err
	}

	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		return false, err
	}

	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.EncryptionMethod.Algorithm) {
			continue
		}
		if isContentFile(ed.CipherData.CipherReference.URI) {
			return true, nil
		}
	}

	return false, nil
}

// isFontObfuscation reports whether the algorithm is one of the standard
// font obfuscation schemes rather than real encryption.
func isFontObfuscation(algorithm string) bool {
	if strings.Contains(algorithm, "adobe.com") && strings.Contains(algorithm, "obfuscation") {
		return true
	}
	if strings.Contains(algorithm, "idpf.org") && strings.Contains(algorithm, "obfuscation") {
		return true
	}
	return false
}

// isContentFile reports whether a URI refers to a document that would make
// the book unreadable if encrypted.
func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	return strings.HasSuffix(uri, ".xhtml") ||
		strings.HasSuffix(uri, ".html") ||
		strings.HasSuffix(uri, ".htm") ||
		strings.HasSuffix(uri, ".xml") ||
		strings.HasSuffix(uri, ".css")
}
