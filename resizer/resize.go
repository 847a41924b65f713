// Package resizer scales transparent PNGs to platform listing sizes with
// three aspect-ratio modes: fit (pad), fill (center-crop), stretch.
package resizer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/chaos-io/bgone/util"
)

type Mode string

const (
	// ModeFit scales to fit within the target and pads the rest with
	// transparency.
	ModeFit Mode = "fit"
	// ModeFill scales and center-crops to fill the target exactly.
	ModeFill Mode = "fill"
	// ModeStretch distorts to the exact target dimensions.
	ModeStretch Mode = "stretch"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFit, ModeFill, ModeStretch:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown resize mode %q (use fit, fill or stretch)", s)
	}
}

// Resize produces a width x height NRGBA image from img according to mode.
func Resize(img image.Image, width, height int, mode Mode) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	switch mode {
	case ModeStretch:
		return imaging.Resize(img, width, height, imaging.Lanczos), nil
	case ModeFill:
		return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), nil
	case ModeFit:
		fitted := imaging.Fit(img, width, height, imaging.Lanczos)
		canvas := imaging.New(width, height, color.NRGBA{})
		return imaging.PasteCenter(canvas, fitted), nil
	default:
		return nil, fmt.Errorf("unknown resize mode %q", mode)
	}
}

// File resizes one image file into a PNG at outPath.
func File(inPath, outPath string, width, height int, mode Mode) error {
	img, err := util.OpenImage(inPath)
	if err != nil {
		return err
	}
	resized, err := Resize(img, width, height, mode)
	if err != nil {
		return err
	}
	return util.WritePNG(outPath, resized)
}
