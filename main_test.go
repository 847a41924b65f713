package main

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())
}

// captureStdout redirects os.Stdout for the duration of fn. Tests using
// it must not run in parallel.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestRun_UsageAndVersion(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"frobnicate"}))
	assert.Equal(t, 0, run([]string{"help"}))
	assert.Equal(t, 0, run([]string{"version"}))
}

func TestRun_SingleArgValidation(t *testing.T) {
	assert.Equal(t, 2, run([]string{"single"}))
	assert.Equal(t, 2, run([]string{"batch"}))
	assert.Equal(t, 2, run([]string{"watch"}))
	assert.Equal(t, 2, run([]string{"resize"}))
}

func TestRun_SingleUnsupportedFileFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("text"), 0o644))

	// Fails at format validation, before any backend is contacted.
	code := run([]string{"single", "--out", filepath.Join(dir, "out"), src})
	assert.Equal(t, 1, code)
}

func TestRun_BatchMissingFolder(t *testing.T) {
	code := run([]string{"batch", filepath.Join(t.TempDir(), "nope")})
	assert.Equal(t, 1, code)
}

func TestRun_BatchEmptyFolderCompletes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	// Nothing is discovered; the scan still completes successfully.
	code := run([]string{"batch", "--out", t.TempDir(), dir})
	assert.Equal(t, 0, code)
}

func TestRun_BatchQuietSuppressesPerFileOutput(t *testing.T) {
	folder := t.TempDir()
	out := t.TempDir()
	writeTestPNG(t, filepath.Join(folder, "photo.png"))
	// Pre-existing output: the file is skipped without touching a backend.
	writeTestPNG(t, filepath.Join(out, "photo_transparent.png"))

	quiet := captureStdout(t, func() {
		assert.Equal(t, 0, run([]string{"batch", "--quiet", "--out", out, folder}))
	})
	assert.NotContains(t, quiet, "Skipped", "per-file lines must be suppressed")
	assert.Contains(t, quiet, "Done: 0 succeeded, 1 skipped, 0 failed")

	loud := captureStdout(t, func() {
		assert.Equal(t, 0, run([]string{"batch", "--out", out, folder}))
	})
	assert.Contains(t, loud, "Skipped (exists)")
}

func TestRun_ResizeEmptyFolderCompletes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	code := run([]string{"resize", "--preset", "Etsy", "--out", t.TempDir(), dir})
	assert.Equal(t, 0, code, "a folder without images is not a failure")
}

func TestRun_ResizeValidation(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, 2, run([]string{"resize", "--mode", "zoom", dir}))
	assert.Equal(t, 2, run([]string{"resize", "--preset", "Shopify", dir}))
	assert.Equal(t, 2, run([]string{"resize", dir}), "needs a preset or explicit size")
}

func TestRun_WatchInvalidSchedule(t *testing.T) {
	code := run([]string{"watch", "--schedule", "nope", t.TempDir()})
	assert.Equal(t, 1, code)
}
