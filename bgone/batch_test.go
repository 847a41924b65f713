package bgone

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyRemover succeeds failAfter times and then fails every call, so a
// batch can be made to fail partway through deterministically.
type flakyRemover struct {
	failAfter int
	called    int
}

func (f *flakyRemover) Remove(_ context.Context, img image.Image) (image.Image, error) {
	f.called++
	if f.failAfter > 0 && f.called > f.failAfter {
		return nil, errors.New("inference backend gone")
	}
	return maskLeftHalf(img), nil
}

func setupFolder(t *testing.T) (folder, out string) {
	t.Helper()
	folder = t.TempDir()
	out = t.TempDir()
	writePNGFile(t, filepath.Join(folder, "a.jpg"), opaqueImage(6, 6))
	writePNGFile(t, filepath.Join(folder, "b.png"), opaqueImage(6, 6))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "c.txt"), []byte("not an image"), 0o644))
	return folder, out
}

func TestDiscover_FiltersUnsupported(t *testing.T) {
	t.Parallel()

	folder, _ := setupFolder(t)
	require.NoError(t, os.Mkdir(filepath.Join(folder, "sub.png"), 0o755)) // dir with image-ish name

	files, err := Discover(folder)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(folder, "a.jpg"), files[0])
	assert.Equal(t, filepath.Join(folder, "b.png"), files[1])
}

func TestDiscover_MissingFolder(t *testing.T) {
	t.Parallel()

	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRunBatch_ReportCoversDiscoveredFilesOnly(t *testing.T) {
	t.Parallel()

	folder, out := setupFolder(t)
	opts := DefaultOptions()
	opts.OutDir = out

	report, err := RunBatch(context.Background(), NewConverter(&stubRemover{}), folder, opts)
	require.NoError(t, err)

	require.Len(t, report.Results, 2, "c.txt must never be discovered")
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.Fatal)
	assert.False(t, report.Cancelled)

	for _, res := range report.Results {
		assert.NotContains(t, res.Source, "c.txt")
	}
	assert.Equal(t, "2 succeeded, 0 skipped, 0 failed", report.Summary())
}

func TestRunBatch_ContinueOnError(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "a.jpg"), []byte("corrupt"), 0o644))
	writePNGFile(t, filepath.Join(folder, "b.jpg"), opaqueImage(6, 6))

	opts := DefaultOptions()
	opts.OutDir = out

	report, err := RunBatch(context.Background(), NewConverter(&stubRemover{}), folder, opts)
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.NotEmpty(t, report.Results[0].Reason)
	assert.Equal(t, OutcomeSuccess, report.Results[1].Outcome, "one corrupt file must not affect the rest")
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
}

func TestRunBatch_SecondRunSkips(t *testing.T) {
	t.Parallel()

	folder, out := setupFolder(t)
	opts := DefaultOptions()
	opts.OutDir = out

	c := NewConverter(&stubRemover{})

	first, err := RunBatch(context.Background(), c, folder, opts)
	require.NoError(t, err)
	require.Equal(t, 2, first.Succeeded)

	second, err := RunBatch(context.Background(), c, folder, opts)
	require.NoError(t, err)
	require.Len(t, second.Results, 2)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, 2, second.Skipped, "rerun without overwrite must skip everything")
	for _, res := range second.Results {
		assert.Equal(t, OutcomeSkipped, res.Outcome)
	}
}

func TestRunBatch_FailFastStopsOnSegmentationFailure(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	out := t.TempDir()
	writePNGFile(t, filepath.Join(folder, "a.png"), opaqueImage(4, 4))
	writePNGFile(t, filepath.Join(folder, "b.png"), opaqueImage(4, 4))
	writePNGFile(t, filepath.Join(folder, "c.png"), opaqueImage(4, 4))

	opts := DefaultOptions()
	opts.OutDir = out
	opts.FailFast = true

	report, err := RunBatch(context.Background(), NewConverter(&flakyRemover{failAfter: 1}), folder, opts)
	require.NoError(t, err)

	require.Len(t, report.Results, 2, "scan stops at the segmentation failure")
	assert.True(t, report.Fatal)
	last := report.Results[len(report.Results)-1]
	assert.Equal(t, OutcomeFailed, last.Outcome)
	assert.True(t, last.SegmentationFailed())
}

func TestRunBatch_NoFailFastContinuesOnSegmentationFailure(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	out := t.TempDir()
	writePNGFile(t, filepath.Join(folder, "a.png"), opaqueImage(4, 4))
	writePNGFile(t, filepath.Join(folder, "b.png"), opaqueImage(4, 4))
	writePNGFile(t, filepath.Join(folder, "c.png"), opaqueImage(4, 4))

	opts := DefaultOptions()
	opts.OutDir = out

	report, err := RunBatch(context.Background(), NewConverter(&flakyRemover{failAfter: 1}), folder, opts)
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.False(t, report.Fatal)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
}

func TestRunBatch_MissingFolder(t *testing.T) {
	t.Parallel()

	_, err := RunBatch(context.Background(), NewConverter(&stubRemover{}), filepath.Join(t.TempDir(), "nope"), DefaultOptions())
	assert.Error(t, err)
}

func TestRunBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	folder, out := setupFolder(t)
	opts := DefaultOptions()
	opts.OutDir = out

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := RunBatch(ctx, NewConverter(&stubRemover{}), folder, opts)
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Empty(t, report.Results)
}

func TestRunBatch_OnResultCallback(t *testing.T) {
	t.Parallel()

	folder, out := setupFolder(t)

	var indexes []int
	var totals []int
	opts := DefaultOptions()
	opts.OutDir = out
	opts.OnResult = func(index, total int, res Result) {
		indexes = append(indexes, index)
		totals = append(totals, total)
	}

	_, err := RunBatch(context.Background(), NewConverter(&stubRemover{}), folder, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indexes)
	assert.Equal(t, []int{2, 2}, totals)
}
