// Package fsdocs implements ports.Source and ports.Sink on the local
// filesystem. The source walks a corpus directory and reads every document
// with an accepted extension; PDF files are reduced to their plain text.
// The sink writes each cleaned document atomically under an output root.
package fsdocs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corey/xdedup/internal/ports"
)

// skipDirs lists directories never descended into (matches the watcher).
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".xdedup":      true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
}

// DefaultExtensions is the document set read when none is configured.
var DefaultExtensions = []string{".txt"}

// maxFileSize bounds a single document. Larger files are almost always
// dumps or binaries that were misnamed.
const maxFileSize = 256 << 20

// Reader implements ports.Source over a directory tree.
type Reader struct {
	root    string
	exts    map[string]bool
	exclude []string // absolute directories to skip (e.g. the output root)
}

// NewReader creates a reader for root accepting the given extensions
// (leading dot, case-insensitive). Directories in exclude are skipped.
func NewReader(root string, extensions []string, exclude ...string) (*Reader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", abs)
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	r := &Reader{root: abs, exts: make(map[string]bool, len(extensions))}
	for _, e := range extensions {
		r.exts[NormalizeExt(e)] = true
	}
	for _, x := range exclude {
		if x == "" {
			continue
		}
		if ax, err := filepath.Abs(x); err == nil && ax != abs {
			r.exclude = append(r.exclude, ax)
		}
	}
	return r, nil
}

// NormalizeExt lowercases an extension and ensures the leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

var _ ports.Source = (*Reader)(nil)

// Root returns the absolute corpus directory.
func (r *Reader) Root() string { return r.root }

// Accepts reports whether path has a document extension.
func (r *Reader) Accepts(path string) bool {
	return r.exts[strings.ToLower(filepath.Ext(path))]
}

// List returns the slash-separated relative paths of every document,
// sorted so that batches are stable between runs.
func (r *Reader) List() ([]string, error) {
	var ids []string
	err := filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != r.root && (skipDirs[info.Name()] || r.excluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !r.Accepts(path) {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", r.root, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Load reads every document. Text is returned byte-for-byte; encoding is
// validated by the cleaning stage so malformed files surface as errors
// instead of being silently repaired.
func (r *Reader) Load() ([]ports.Document, error) {
	ids, err := r.List()
	if err != nil {
		return nil, err
	}
	docs := make([]ports.Document, 0, len(ids))
	for _, id := range ids {
		text, err := r.Read(id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, ports.Document{ID: id, Text: text})
	}
	return docs, nil
}

// Read returns the text of one document by ID.
func (r *Reader) Read(id string) (string, error) {
	path := filepath.Join(r.root, filepath.FromSlash(id))
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", id, err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("%s: %d bytes exceeds the %d byte document limit", id, info.Size(), maxFileSize)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", id, err)
	}
	return string(data), nil
}

func (r *Reader) excluded(dir string) bool {
	for _, x := range r.exclude {
		if dir == x {
			return true
		}
	}
	return false
}
