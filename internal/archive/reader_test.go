package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return path
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.zip"))
	if err == nil {
		t.Fatal("expected error opening missing archive")
	}
}

func TestListHTMLEntriesExcludesMacOSXAndNonHTML(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"a.html":            "<p>a</p>",
		"b.HTM":             "<p>b</p>",
		"notes.txt":         "plain text",
		"__MACOSX/a.html":   "<p>resource fork junk</p>",
		"sub/dir/c.html":    "<p>c</p>",
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	entries := r.ListHTMLEntries()
	got := map[string]bool{}
	for _, e := range entries {
		got[e] = true
	}

	for _, want := range []string{"a.html", "b.HTM", "sub/dir/c.html"} {
		if !got[want] {
			t.Errorf("expected %s in html entries, got %v", want, entries)
		}
	}
	if got["__MACOSX/a.html"] {
		t.Errorf("__MACOSX entry leaked into html entries: %v", entries)
	}
	if got["notes.txt"] {
		t.Errorf("non-html entry leaked into html entries: %v", entries)
	}
}

func TestReadToleratesLeadingSlashAndBackslash(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"dir/page.html": "hello",
	})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	for _, lookup := range []string{"dir/page.html", "/dir/page.html", `dir\page.html`} {
		data, err := r.Read(lookup)
		if err != nil {
			t.Fatalf("read(%q): %v", lookup, err)
		}
		if !bytes.Equal(data, []byte("hello")) {
			t.Errorf("read(%q) = %q, want %q", lookup, data, "hello")
		}
	}
}

func TestReadMissingEntry(t *testing.T) {
	path := writeTestZip(t, map[string]string{"a.html": "x"})
	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if _, err := r.Read("missing.html"); err == nil {
		t.Fatal("expected error reading missing entry")
	}
}
