package util

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	// Decoders for the supported input formats; png comes with the named
	// import above.
	_ "image/jpeg"
	_ "golang.org/x/image/webp"
)

// OpenImage decodes a local image file. The source is opened read-only.
func OpenImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// WritePNG encodes img as PNG at path, creating the parent directory if
// needed. The partial file is removed when encoding fails.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return file.Close()
}
