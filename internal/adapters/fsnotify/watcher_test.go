package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Corpus watcher: detect document changes, trigger a re-clean
// =============================================================================

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func acceptTxt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

// startWatcher watches dir and returns a channel of reported paths.
func startWatcher(t *testing.T, dir string, exclude ...string) (*Watcher, chan string) {
	t.Helper()
	w, err := NewWatcher(acceptTxt, exclude...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsDocumentChange(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "page.txt")
	require.NoError(t, os.WriteFile(doc, []byte("original"), 0644))

	_, changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(doc, []byte("modified"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for document change")
	assert.Equal(t, doc, path)
}

func TestWatcher_DetectsNewDocument(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, dir)

	doc := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(doc, []byte("new"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for new document")
	assert.Equal(t, doc, path)
}

func TestWatcher_DetectsDeletedDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(doc, []byte("delete me"), 0644))

	_, changed := startWatcher(t, dir)
	require.NoError(t, os.Remove(doc))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted document")
	assert.Equal(t, doc, path)
}

func TestWatcher_DetectsDocumentInNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, dir)

	sub := filepath.Join(dir, "chapter")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond) // let the watcher add the new directory

	doc := filepath.Join(sub, "one.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for document in new directory")
	assert.Equal(t, doc, path)
}

func TestWatcher_IgnoresNonDocuments(t *testing.T) {
	// State dirs, editor files, other extensions and the output dir
	// do NOT trigger onChange.
	dir := t.TempDir()
	stateDir := filepath.Join(dir, ".xdedup")
	require.NoError(t, os.MkdirAll(stateDir, 0755))
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))
	outDir := filepath.Join(dir, "clean")
	require.NoError(t, os.MkdirAll(outDir, 0755))

	_, changed := startWatcher(t, dir, outDir)

	os.WriteFile(filepath.Join(stateDir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(gitDir, "HEAD.txt"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(outDir, "page.txt"), []byte("cleaned"), 0644)
	os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "page.txt.swp"), []byte("x"), 0644)

	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for ignored files")

	// But a real document should trigger
	doc := filepath.Join(dir, "page.txt")
	require.NoError(t, os.WriteFile(doc, []byte("text"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for document")
	assert.Equal(t, doc, path)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "missing"), func(string) {})
	assert.Error(t, err)
}

func TestWatcher_StopCleanup(t *testing.T) {
	// After Stop(), no more callbacks fire.
	dir := t.TempDir()

	w, err := NewWatcher(nil)
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	require.NoError(t, w.Watch(dir, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	}))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	os.WriteFile(filepath.Join(dir, "after_stop.txt"), []byte("nope"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()

	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}

func TestShouldIgnorePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/corpus/page.txt", false},
		{"/corpus/.xdedup/xdedup.db", true},
		{"/corpus/.git/HEAD", true},
		{"/corpus/page.txt.swp", true},
		{"/corpus/page.txt~", true},
		{"/corpus/.tmp-991", true},
		{"/corpus/.DS_Store", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldIgnorePath(filepath.FromSlash(tt.path)), tt.path)
	}
}

func TestWatcher_Excluded(t *testing.T) {
	w, err := NewWatcher(nil, "/corpus/out", "")
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.excluded("/corpus/out"))
	assert.True(t, w.excluded("/corpus/out/a.txt"))
	assert.False(t, w.excluded("/corpus/output/a.txt"))
	assert.False(t, w.excluded("/corpus/a.txt"))
}
