package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/xdedup/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Run ledger: save/load/list/clear, persistence across restarts
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// makeTestRun creates a realistic run record.
func makeTestRun(mode string) *ports.RunRecord {
	return &ports.RunRecord{
		Mode:            mode,
		StartedAt:       1700000000,
		ElapsedMs:       42,
		MinSize:         50,
		Input:           "/corpus/raw",
		Output:          "/corpus/clean",
		Batches:         2,
		DuplicateHashes: 1234,
		Documents: []ports.DocumentRecord{
			{ID: "a.txt", CharsIn: 900, CharsOut: 400, BytesIn: 950, BytesOut: 420, Ranges: 2},
			{ID: "sub/b.txt", CharsIn: 300, CharsOut: 300, BytesIn: 300, BytesOut: 300},
		},
	}
}

func TestStore_SaveLoadRun_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	orig := makeTestRun(ports.ModeClean)
	require.NoError(t, store.SaveRun(orig))
	assert.Equal(t, "1", orig.ID, "first run gets sequence 1")

	loaded, err := store.LoadRun(orig.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, orig, loaded)
	assert.Equal(t, 500, loaded.RemovedChars())
	assert.Equal(t, 1, loaded.ChangedDocuments())
}

func TestStore_LoadRun_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	// Empty database: no bucket yet
	run, err := store.LoadRun("7")
	require.NoError(t, err)
	assert.Nil(t, run)

	require.NoError(t, store.SaveRun(makeTestRun(ports.ModeClean)))
	run, err = store.LoadRun("7")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestStore_LoadRun_InvalidID(t *testing.T) {
	store, _ := newTestStore(t)
	for _, id := range []string{"", "abc", "0", "-1"} {
		_, err := store.LoadRun(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestStore_SaveRun_Nil(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveRun(nil))
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 0; i < 12; i++ {
		run := makeTestRun(ports.ModeClean)
		run.MinSize = i + 1
		require.NoError(t, store.SaveRun(run))
	}

	all, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, all, 12)
	// Keys sort numerically, so run 10 comes after run 9.
	assert.Equal(t, "12", all[0].ID)
	assert.Equal(t, "11", all[1].ID)
	assert.Equal(t, "1", all[11].ID)
	assert.Equal(t, 12, all[0].MinSize)

	limited, err := store.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, []string{"12", "11", "10"}, []string{limited[0].ID, limited[1].ID, limited[2].ID})
}

func TestStore_ListRuns_Empty(t *testing.T) {
	store, _ := newTestStore(t)
	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_SaveRun_ExplicitIDAdvancesSequence(t *testing.T) {
	store, _ := newTestStore(t)

	run := makeTestRun(ports.ModePrefix)
	run.ID = "40"
	require.NoError(t, store.SaveRun(run))

	next := makeTestRun(ports.ModeClean)
	require.NoError(t, store.SaveRun(next))
	assert.Equal(t, "41", next.ID)

	bad := makeTestRun(ports.ModeClean)
	bad.ID = "latest"
	assert.Error(t, store.SaveRun(bad))
}

func TestStore_ClearRuns(t *testing.T) {
	store, _ := newTestStore(t)

	// Clear on empty ledger: idempotent
	require.NoError(t, store.ClearRuns())

	require.NoError(t, store.SaveRun(makeTestRun(ports.ModeClean)))
	require.NoError(t, store.SaveRun(makeTestRun(ports.ModePrefix)))
	require.NoError(t, store.ClearRuns())

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	// Sequence restarts with a fresh bucket
	run := makeTestRun(ports.ModeClean)
	require.NoError(t, store.SaveRun(run))
	assert.Equal(t, "1", run.ID)

	require.NoError(t, store.ClearRuns())
	require.NoError(t, store.ClearRuns())
}

func TestStore_RunsSurviveRestart(t *testing.T) {
	// Save, close, reopen: committed runs are intact.
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	original := makeTestRun(ports.ModeClean)
	require.NoError(t, store1.SaveRun(original))
	require.NoError(t, store1.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	loaded, err := store2.LoadRun(original.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original, loaded)

	// Sequence continues after restart
	next := makeTestRun(ports.ModePrefix)
	require.NoError(t, store2.SaveRun(next))
	assert.Equal(t, "2", next.ID)
}

func TestStore_ConcurrentReads(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveRun(makeTestRun(ports.ModeClean)))

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run, err := store.LoadRun("1")
			if err != nil {
				errs <- err
				return
			}
			if run == nil {
				errs <- fmt.Errorf("got nil run")
				return
			}
			if len(run.Documents) != 2 {
				errs <- fmt.Errorf("expected 2 documents, got %d", len(run.Documents))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read error: %v", err)
	}
}

func TestEncoding_RejectsUnknownVersion(t *testing.T) {
	data, err := encodeRun(makeTestRun(ports.ModeClean))
	require.NoError(t, err)
	assert.Equal(t, formatVersion, data[0])

	data[0] = 99
	_, err = decodeRun(data)
	assert.ErrorContains(t, err, "version 99")

	_, err = decodeRun(nil)
	assert.Error(t, err)
}

func TestEncoding_RunKeyOrdersNumerically(t *testing.T) {
	assert.Less(t, string(runKey(9)), string(runKey(10)))
	assert.Less(t, string(runKey(255)), string(runKey(256)))

	seq, err := parseRunID(formatRunID(1 << 40))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), seq)
}

// =============================================================================
// Lock contention tests — verify the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another process/goroutine holds the bbolt exclusive lock,
	// a second open should timeout in ~1 second, not hang forever.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2, "store should be nil on timeout")
	assert.Contains(t, err.Error(), "timeout", "error should mention timeout")
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait ~1s for the configured timeout")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.SaveRun(makeTestRun(ports.ModeClean)))
	store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.NoError(t, err, "open after close should succeed")
	require.NotNil(t, store2)
	assert.Less(t, elapsed, 500*time.Millisecond, "should open instantly after lock released")
	defer store2.Close()

	runs, err := store2.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
