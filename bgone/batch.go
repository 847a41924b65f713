package bgone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
)

// Options carries the per-run settings shared by every file in a batch.
type Options struct {
	OutDir    string
	Suffix    string
	Overwrite bool

	// FailFast aborts the remaining scan when the segmentation backend
	// fails. Other per-file errors (unsupported format, decode, encode)
	// always continue.
	FailFast bool

	// OnResult, when set, is called after each file with its position in
	// the scan and the result. Used for incremental CLI output.
	OnResult func(index, total int, res Result)
}

// DefaultOptions matches the CLI defaults: ./output, _transparent, no
// overwrite.
func DefaultOptions() Options {
	return Options{
		OutDir: "output",
		Suffix: "_transparent",
	}
}

// Report is the ordered audit trail of one batch run: exactly one Result
// per discovered file, in scan order.
type Report struct {
	RunID   string
	Results []Result

	Succeeded int
	Skipped   int
	Failed    int

	// Fatal is set when FailFast aborted the scan; the failing result is
	// the last entry.
	Fatal bool

	// Cancelled is set when the context ended between files; Results
	// holds the files processed up to that point.
	Cancelled bool
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomeSuccess:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Summary is the one-line count trailer shown after a batch run.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d succeeded, %d skipped, %d failed", r.Succeeded, r.Skipped, r.Failed)
}

// Discover lists the supported image files directly inside folder
// (non-recursive), in directory order. Files with other extensions are
// not discovered at all.
func Discover(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !SupportedFormat(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(folder, entry.Name()))
	}
	return files, nil
}

// RunBatch converts every discovered file in folder sequentially and
// returns the completed Report. A Failed result never halts the run
// unless FailFast matches a segmentation failure. The error return is
// reserved for batch-level setup problems (folder missing or unreadable).
func RunBatch(ctx context.Context, c *Converter, folder string, opts Options) (*Report, error) {
	files, err := Discover(folder)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: ksuid.New().String()}

	for i, path := range files {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		res := c.Convert(ctx, Request{
			Source:    path,
			OutDir:    opts.OutDir,
			Suffix:    opts.Suffix,
			Overwrite: opts.Overwrite,
		})
		report.add(res)

		if opts.OnResult != nil {
			opts.OnResult(i+1, len(files), res)
		}

		if opts.FailFast && res.SegmentationFailed() {
			report.Fatal = true
			break
		}
	}

	return report, nil
}
