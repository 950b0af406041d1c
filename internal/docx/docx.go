// Package docx reads and rewrites Word documents containing Zotero
// citation fields. The document is treated as raw XML text throughout:
// rewrites are span-local byte substitutions, so everything outside a
// replaced span survives byte-for-byte.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// documentEntry is the archive member holding the document body.
const documentEntry = "word/document.xml"

// Errors for unusable input documents.
var (
	ErrNotDocx       = errors.New("not a docx archive")
	ErrNoDocumentXML = errors.New("archive has no word/document.xml")
	ErrNoFields      = errors.New("no citation fields found in document")
)

// Document holds a fully-read docx archive. Entries keep their original
// order so a repack differs only in the rewritten body.
type Document struct {
	entries []entry
	body    string // content of word/document.xml
}

type entry struct {
	name string
	data []byte
}

// Read loads a docx file entirely into memory.
func Read(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	defer zr.Close()

	doc := &Document{}
	found := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		doc.entries = append(doc.entries, entry{name: f.Name, data: data})
		if f.Name == documentEntry {
			doc.body = string(data)
			found = true
		}
	}
	if !found {
		return nil, ErrNoDocumentXML
	}
	return doc, nil
}

// Body returns the raw XML text of the document body.
func (d *Document) Body() string {
	return d.body
}

// Write assembles a new archive with the given body replacing the
// original word/document.xml and writes it to path in a single step.
// The output is built fully in memory first; a failed run never leaves
// a partial file behind.
func (d *Document) Write(path, body string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range d.entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
		data := e.data
		if e.name == documentEntry {
			data = []byte(body)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
