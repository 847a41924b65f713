// Package bgone implements the local background-removal tool: a
// single-image converter and a sequential batch orchestrator on top of a
// pluggable segmentation backend.
package bgone

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaos-io/bgone/bgone/rembg"
	"github.com/chaos-io/bgone/util"
)

// Outcome is the terminal state of one conversion.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Request describes one conversion. It is immutable once built; batch
// runs construct one per discovered file.
type Request struct {
	Source    string
	OutDir    string
	Suffix    string
	Overwrite bool
}

// OutputPath is OutDir/<stem><Suffix>.png.
func (r Request) OutputPath() string {
	base := filepath.Base(r.Source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(r.OutDir, stem+r.Suffix+OutputExt)
}

// Result records the terminal outcome of one Request. Reason is non-empty
// exactly when the outcome is Failed.
type Result struct {
	Source  string
	Output  string
	Outcome Outcome
	Reason  string

	segmentation bool
}

// SegmentationFailed reports whether the failure came from the removal
// backend rather than validation, decode, or encode. The batch fail-fast
// policy only reacts to this class.
func (r Result) SegmentationFailed() bool {
	return r.Outcome == OutcomeFailed && r.segmentation
}

// Alpha threshold for --trim subject detection.
const trimThreshold = 0.1

// Converter turns one source image into one transparent PNG.
type Converter struct {
	Remover rembg.Remover

	// KeepAlpha skips the removal backend when the source already
	// carries real transparency.
	KeepAlpha bool

	// Trim crops the output to the subject bounding box.
	Trim bool
}

func NewConverter(remover rembg.Remover) *Converter {
	return &Converter{Remover: remover}
}

// Convert validates, skips, or processes one request. Every failure is
// absorbed into the Result; nothing panics or propagates. On Success
// exactly one file is written; Skipped and Failed write nothing.
func (c *Converter) Convert(ctx context.Context, req Request) Result {
	res := Result{Source: req.Source, Output: req.OutputPath(), Outcome: OutcomeFailed}

	if !SupportedFormat(req.Source) {
		res.Reason = fmt.Sprintf("unsupported format %q (supported: %s)",
			filepath.Ext(req.Source), strings.Join(SupportedExtensions(), ", "))
		return res
	}

	if !req.Overwrite {
		if _, err := os.Stat(res.Output); err == nil {
			res.Outcome = OutcomeSkipped
			return res
		}
	}

	img, err := util.OpenImage(req.Source)
	if err != nil {
		res.Reason = err.Error()
		return res
	}

	var cut *image.NRGBA
	if c.KeepAlpha {
		if src := ToNRGBA(img); HasAlpha(src) {
			cut = src
		}
	}
	if cut == nil {
		removed, err := c.Remover.Remove(ctx, img)
		if err != nil {
			res.Reason = fmt.Sprintf("remove background: %v", err)
			res.segmentation = true
			return res
		}
		cut = ToNRGBA(removed)
	}

	if c.Trim {
		if bounds, ok := SubjectBounds(cut, trimThreshold); ok {
			cut = cropTo(cut, bounds)
		}
	}

	if err := util.WritePNG(res.Output, cut); err != nil {
		res.Reason = err.Error()
		return res
	}

	res.Outcome = OutcomeSuccess
	return res
}
