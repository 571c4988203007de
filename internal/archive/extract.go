// Package archive extracts image files from uploaded container archives
// (ZIP, TAR, gzip-compressed TAR) for bulk ingestion.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxExtractedBytes is the cumulative uncompressed-size ceiling across all
// qualifying entries of one archive.
const MaxExtractedBytes = 100 << 20 // 100 MiB

var (
	// ErrUnsupportedArchive is returned for archive extensions other than
	// .zip, .tar, .tar.gz and .tgz.
	ErrUnsupportedArchive = errors.New("archive: unsupported format, use .zip, .tar, or .tar.gz")
	// ErrTooLarge is returned when the qualifying entries exceed the
	// uncompressed-size ceiling. Extraction aborts, nothing is yielded.
	ErrTooLarge = fmt.Errorf("archive: exceeds maximum size (%dMB)", MaxExtractedBytes/(1024*1024))
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "heic": {}, "heif": {},
}

// Entry is one qualifying image extracted from an archive.
type Entry struct {
	Name string
	Data []byte
}

// isImageFilename reports whether name qualifies for extraction: a bare
// filename (entries with path separators are skipped, which also rejects any
// traversal attempt) with an accepted image extension.
func isImageFilename(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	_, ok := imageExtensions[ext]
	return ok
}

// ExtractImages extracts every qualifying image entry from the archive data.
// The archive format is chosen by the filename extension. Non-image entries
// and entries nested in directories are skipped silently; crossing
// MaxExtractedBytes aborts with ErrTooLarge before anything is returned to
// the caller, so a partial batch is never ingested.
func ExtractImages(data []byte, filename string) ([]Entry, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(data)
	case strings.HasSuffix(name, ".tar"):
		return extractTar(data, false)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return extractTar(data, true)
	default:
		return nil, ErrUnsupportedArchive
	}
}

func extractZip(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: failed to open zip: %w", err)
	}

	var entries []Entry
	var total uint64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isImageFilename(f.Name) {
			continue
		}
		total += f.UncompressedSize64
		if total > MaxExtractedBytes {
			return nil, ErrTooLarge
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: failed to open zip entry %s: %w", f.Name, err)
		}
		// cap the read at the declared size so a lying header cannot blow
		// past the ceiling
		content, err := io.ReadAll(io.LimitReader(rc, int64(f.UncompressedSize64)+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: failed to read zip entry %s: %w", f.Name, err)
		}
		if uint64(len(content)) > f.UncompressedSize64 {
			return nil, ErrTooLarge
		}
		entries = append(entries, Entry{Name: f.Name, Data: content})
	}
	return entries, nil
}

func extractTar(data []byte, gzipped bool) ([]Entry, error) {
	var r io.Reader = bytes.NewReader(data)
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("archive: failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	var entries []Entry
	var total int64
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: failed to read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isImageFilename(hdr.Name) {
			continue
		}
		total += hdr.Size
		if total > MaxExtractedBytes {
			return nil, ErrTooLarge
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("archive: failed to read tar entry %s: %w", hdr.Name, err)
		}
		entries = append(entries, Entry{Name: hdr.Name, Data: content})
	}
	return entries, nil
}
