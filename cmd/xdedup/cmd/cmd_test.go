package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/xdedup/internal/app"
)

// =============================================================================
// CLI: commands run end to end against a temp corpus
// =============================================================================

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	runOpts = runFlags{minSize: app.DefaultMinSize, exts: []string{".txt"}, settle: app.DefaultSettle}
	historyLimit, historyClear, historyForce = 10, false, false
	logLevelFlag, logJSONFlag = "info", false
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func setupCorpus(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "corpus")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("xxxxxxxxaaaa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("xxxxxxxxbbbb"), 0644))
	return dir
}

func TestCLI_Clean(t *testing.T) {
	dir := setupCorpus(t)
	out := filepath.Join(t.TempDir(), "out")

	require.NoError(t, execute(t, "clean", dir, "--out", out, "--min-size", "8", "--no-history", "--log-level", "warn"))

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(data))
	data, err = os.ReadFile(filepath.Join(out, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bbbb", string(data))
}

func TestCLI_CleanDefaultOutput(t *testing.T) {
	dir := setupCorpus(t)

	require.NoError(t, execute(t, "clean", dir, "-n", "8", "--no-history"))

	data, err := os.ReadFile(filepath.Join(dir+".clean", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(data))
}

func TestCLI_PrefixDryRun(t *testing.T) {
	dir := setupCorpus(t)
	out := filepath.Join(t.TempDir(), "out")

	require.NoError(t, execute(t, "prefix", dir, "--out", out, "--min-size", "4", "--dry-run", "--no-history"))

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "dry run writes nothing")
}

func TestCLI_KeepFile(t *testing.T) {
	dir := setupCorpus(t)
	out := filepath.Join(t.TempDir(), "out")
	keep := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("# protected\nxxxx\n"), 0644))

	require.NoError(t, execute(t, "clean", dir, "--out", out, "--min-size", "8", "--keep-file", keep, "--no-history"))

	// Every shared window overlaps the protected phrase.
	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "xxxxxxxxaaaa", string(data))
}

func TestCLI_History(t *testing.T) {
	dir := setupCorpus(t)
	t.Chdir(dir)

	// No ledger yet
	require.NoError(t, execute(t, "history"))

	require.NoError(t, execute(t, "clean", "--min-size", "8"))
	require.NoError(t, execute(t, "history", "--limit", "5"))
	require.NoError(t, execute(t, "history", "1"))
	assert.Error(t, execute(t, "history", "99"))

	a, err := app.New(app.Config{Input: dir, NoHistory: true})
	require.NoError(t, err)
	runs, err := a.History(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].ChangedDocuments())

	require.NoError(t, execute(t, "history", "--clear", "--force"))
	runs, err = a.History(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCLI_InvalidInput(t *testing.T) {
	assert.Error(t, execute(t, "clean", filepath.Join(t.TempDir(), "missing"), "--no-history"))
	assert.Error(t, execute(t, "clean", t.TempDir(), "--min-size", "-3", "--no-history"))
	assert.Error(t, execute(t, "history", "--log-level", "loud"))
}

func TestCLI_HealthWithoutServer(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, execute(t, "health"))
	require.NoError(t, execute(t, "stop"))
	require.NoError(t, execute(t, "config"))
}
