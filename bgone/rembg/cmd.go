package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chaos-io/bgone/util"
)

// Cmd removes backgrounds by shelling out to a local rembg CLI
// (`rembg i [-m model] <in> <out>`). Each call round-trips through a
// private temp directory.
type Cmd struct {
	Path  string
	Model string
}

func NewCmd(path, model string) *Cmd {
	if path == "" {
		path = "rembg"
	}
	return &Cmd{Path: path, Model: model}
}

func (c *Cmd) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	dir, err := os.MkdirTemp("", "bgone-rembg-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	if err := util.WritePNG(in, img); err != nil {
		return nil, err
	}

	args := []string{"i"}
	if c.Model != "" {
		args = append(args, "-m", c.Model)
	}
	args = append(args, in, out)

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("run %s: %v: %s", c.Path, err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", c.Path, err)
	}

	cut, err := util.OpenImage(out)
	if err != nil {
		return nil, fmt.Errorf("read rembg output: %w", err)
	}
	return restoreSize(img, cut), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
