// Package archive reads a static corpus of HTML documents out of a ZIP
// file. It is the leaf of the crawl/index/query pipeline: everything
// downstream consumes bytes through this package, never touching the
// zip package directly.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel errors surfaced to callers at build time.
var (
	ErrArchiveMissing = errors.New("archive: file not found")
	ErrArchiveCorrupt = errors.New("archive: not a valid zip file")
	ErrEntryNotFound  = errors.New("archive: entry not found")
)

// Reader gives read-only, concurrency-safe access to a ZIP archive's
// entries. Opening is a one-time cost; Read may be called concurrently
// for distinct entries.
type Reader struct {
	path    string
	zr      *zip.ReadCloser
	entries map[string]*zip.File // normalized path -> file header
}

// Open opens path as a ZIP archive. The returned Reader owns the
// underlying file handle until Close is called.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, zip.ErrChecksum) {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveCorrupt, path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveMissing, path, err)
	}

	r := &Reader{
		path:    path,
		zr:      zr,
		entries: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		r.entries[normalizePath(f.Name)] = f
	}
	return r, nil
}

// Close releases the underlying archive handle.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// normalizePath makes an entry path tolerant of leading slashes and
// backslash separators, so lookups succeed regardless of how the
// archive's tool of origin wrote its entry names.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "/")
}

// ListHTMLEntries returns the canonical paths of every entry whose
// lowercased name ends in .html or .htm, excluding anything under
// __MACOSX.
func (r *Reader) ListHTMLEntries() []string {
	var out []string
	for _, f := range r.zr.File {
		name := normalizePath(f.Name)
		if strings.HasPrefix(name, "__MACOSX") {
			continue
		}
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
			out = append(out, name)
		}
	}
	return out
}

// Read returns the raw bytes of entryPath, tolerant of a leading slash
// or backslash separators in the lookup key.
func (r *Reader) Read(entryPath string) ([]byte, error) {
	f, ok := r.entries[normalizePath(entryPath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryPath)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", entryPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: reading %s: %w", entryPath, err)
	}
	return data, nil
}

// Has reports whether entryPath exists in the archive.
func (r *Reader) Has(entryPath string) bool {
	_, ok := r.entries[normalizePath(entryPath)]
	return ok
}
