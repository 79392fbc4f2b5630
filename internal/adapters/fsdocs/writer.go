package fsdocs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/xdedup/internal/ports"
)

// ErrPathInvalid is returned for document IDs that would escape the output root.
var ErrPathInvalid = errors.New("document id escapes output root")

// Writer implements ports.Sink under an output directory. Each document is
// written to a temp file in the destination directory, synced, then renamed
// over the final name, so readers never observe a half-written document.
type Writer struct {
	root  string
	permF os.FileMode
	permD os.FileMode
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("output dir: %w", os.ErrInvalid)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{root: abs, permF: 0o644, permD: 0o755}, nil
}

var _ ports.Sink = (*Writer)(nil)

// Root returns the absolute output directory.
func (w *Writer) Root() string { return w.root }

// Write stores text for id. PDF inputs are written as .txt since only
// their extracted text survives.
func (w *Writer) Write(id, text string) error {
	dest, err := w.Path(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), w.permD); err != nil {
		return err
	}
	return w.writeAtomic(dest, text)
}

// Path maps a document ID to its destination file.
func (w *Writer) Path(id string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(id))
	if rel == "." || rel == "" || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("%w: %q", ErrPathInvalid, id)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathInvalid, id)
	}
	if strings.EqualFold(filepath.Ext(rel), ".pdf") {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".txt"
	}
	return filepath.Join(w.root, rel), nil
}

func (w *Writer) writeAtomic(dest, text string) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permF)

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// Best effort: persist the rename itself.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
