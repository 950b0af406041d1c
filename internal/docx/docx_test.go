package docx

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTestDocx assembles a minimal docx archive on disk.
func writeTestDocx(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
}

func TestReadWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.docx")
	out := filepath.Join(dir, "out.docx")

	body := wrapBody(zoteroField(onePayload(uriA)))
	writeTestDocx(t, in, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   body,
		"word/styles.xml":     `<?xml version="1.0"?><w:styles/>`,
	})

	doc, err := Read(in)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Body() != body {
		t.Error("Body does not match the stored document.xml")
	}

	newBody := body + "<!-- -->"
	if err := doc.Write(out, newBody); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reread, err := Read(out)
	if err != nil {
		t.Fatalf("Read rewritten: %v", err)
	}
	if reread.Body() != newBody {
		t.Error("rewritten body not preserved through the archive")
	}

	// All other entries survive untouched.
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("opening rewritten archive: %v", err)
	}
	defer zr.Close()
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"[Content_Types].xml", "word/document.xml", "word/styles.xml"} {
		if !names[want] {
			t.Errorf("entry %s missing from rewritten archive", want)
		}
	}
}

func TestRead_NotAnArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Read(path)
	if !errors.Is(err, ErrNotDocx) {
		t.Errorf("got %v, want ErrNotDocx", err)
	}
}

func TestRead_MissingDocumentXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	writeTestDocx(t, path, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
	})

	_, err := Read(path)
	if !errors.Is(err, ErrNoDocumentXML) {
		t.Errorf("got %v, want ErrNoDocumentXML", err)
	}
}
