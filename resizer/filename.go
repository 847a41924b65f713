package resizer

import (
	"fmt"
	"strings"
)

// GenerateFilename builds the batch-resize output name:
// {prefix}-{index:03d}-{preset-slug}-{width}x{height}.png,
// e.g. product-001-fiverr-gig-688x459.png.
func GenerateFilename(prefix string, index int, presetName string, width, height int) string {
	slug := strings.ReplaceAll(strings.ToLower(presetName), " ", "-")
	return fmt.Sprintf("%s-%03d-%s-%dx%d.png", prefix, index, slug, width, height)
}
