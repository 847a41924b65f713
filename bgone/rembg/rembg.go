// Package rembg wraps external background-removal backends behind a small
// interface. The segmentation itself always happens outside this process:
// either in a running rembg HTTP server or in a rembg CLI invocation.
package rembg

import (
	"context"
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Remover takes a decoded image and returns the same scene with the
// background made transparent. Implementations must preserve the spatial
// dimensions of the input.
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// Noop returns the input unchanged. Useful as a placeholder wiring target;
// real processing needs Server or Cmd.
type Noop struct{}

func (Noop) Remove(_ context.Context, img image.Image) (image.Image, error) {
	return img, nil
}

// downscaleWithinMax scales img down so its longest edge is at most
// maxEdge, preserving aspect ratio. Images already within the bound are
// returned unchanged.
func downscaleWithinMax(img image.Image, maxEdge int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if maxEdge <= 0 || longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))
	return resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
}

// restoreSize maps a (possibly downscaled) cut-out back onto the source
// dimensions. When sizes already match, the cut-out is returned as NRGBA.
// Otherwise the cut-out is upscaled and its alpha channel is transferred
// onto the original pixels, so the output keeps full source resolution.
func restoreSize(src, cut image.Image) *image.NRGBA {
	sb := src.Bounds()
	cb := cut.Bounds()
	if cb.Dx() == sb.Dx() && cb.Dy() == sb.Dy() {
		return toNRGBA(cut)
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), cut, cb, xdraw.Src, nil)

	out := toNRGBA(src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = scaled.Pix[i]
	}
	return out
}

// toNRGBA always returns a fresh buffer, so callers may mutate the result.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
