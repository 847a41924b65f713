// Command bgone removes image backgrounds locally and exports transparent
// PNGs, one file at a time or for a whole folder. The segmentation runs in
// an external rembg backend (HTTP server or CLI); everything else is local
// filesystem bookkeeping.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/chaos-io/bgone/bgone"
	"github.com/chaos-io/bgone/bgone/rembg"
	"github.com/chaos-io/bgone/resizer"
)

var version = "0.3.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "single":
		return cmdSingle(args[1:])
	case "batch":
		return cmdBatch(args[1:])
	case "watch":
		return cmdWatch(args[1:])
	case "resize":
		return cmdResize(args[1:])
	case "help", "-h", "--help":
		usage()
		return 0
	case "version", "--version":
		fmt.Println("bgone v" + version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "bgone: unknown command %q\n", args[0])
		usage()
		return 2
	}
}

// convertFlags are the flags shared by single, batch, and watch.
type convertFlags struct {
	out       string
	suffix    string
	overwrite bool
	quiet     bool
	verbose   bool

	server    string
	rembgCmd  string
	model     string
	keepAlpha bool
	trim      bool
}

func (c *convertFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.out, "out", "output", "Output directory")
	fs.StringVar(&c.suffix, "suffix", "_transparent", "Output filename suffix")
	fs.BoolVar(&c.overwrite, "overwrite", false, "Overwrite existing outputs")
	fs.BoolVar(&c.quiet, "quiet", false, "Suppress per-file output")
	fs.BoolVar(&c.verbose, "verbose", false, "Enable debug logging")
	fs.StringVar(&c.server, "server", rembg.DefaultBaseURL, "rembg server base URL")
	fs.StringVar(&c.rembgCmd, "rembg-cmd", "", "Path to a local rembg CLI (used instead of --server)")
	fs.StringVar(&c.model, "model", rembg.DefaultModel, "Segmentation model name")
	fs.BoolVar(&c.keepAlpha, "keep-alpha", false, "Skip removal when the source already has transparency")
	fs.BoolVar(&c.trim, "trim", false, "Crop output to the subject bounding box")
}

func (c *convertFlags) converter() *bgone.Converter {
	var remover rembg.Remover
	if c.rembgCmd != "" {
		remover = rembg.NewCmd(c.rembgCmd, c.model)
	} else {
		remover = rembg.NewServer(c.server, c.model)
	}
	conv := bgone.NewConverter(remover)
	conv.KeepAlpha = c.keepAlpha
	conv.Trim = c.trim
	return conv
}

func (c *convertFlags) setupLogging() {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func (c *convertFlags) options(failFast bool) bgone.Options {
	return bgone.Options{
		OutDir:    c.out,
		Suffix:    c.suffix,
		Overwrite: c.overwrite,
		FailFast:  failFast,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func cmdSingle(args []string) int {
	fs := flag.NewFlagSet("bgone single", flag.ContinueOnError)
	var cf convertFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bgone single <image> [flags]")
		return 2
	}
	cf.setupLogging()

	ctx, stop := signalContext()
	defer stop()

	res := cf.converter().Convert(ctx, bgone.Request{
		Source:    fs.Arg(0),
		OutDir:    cf.out,
		Suffix:    cf.suffix,
		Overwrite: cf.overwrite,
	})

	switch res.Outcome {
	case bgone.OutcomeSuccess:
		if !cf.quiet {
			fmt.Printf("Processed: %s -> %s\n", res.Source, res.Output)
		}
		return 0
	case bgone.OutcomeSkipped:
		if !cf.quiet {
			fmt.Printf("Skipped (exists): %s\n", res.Output)
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Failed: %s: %s\n", res.Source, res.Reason)
		return 1
	}
}

func cmdBatch(args []string) int {
	fs := flag.NewFlagSet("bgone batch", flag.ContinueOnError)
	var cf convertFlags
	cf.register(fs)
	failFast := fs.Bool("fail-fast", false, "Abort the batch when the segmentation backend fails")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bgone batch <folder> [flags]")
		return 2
	}
	cf.setupLogging()

	ctx, stop := signalContext()
	defer stop()

	opts := cf.options(*failFast)
	if !cf.quiet {
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		opts.OnResult = func(i, n int, res bgone.Result) {
			printResult(i, n, res, interactive)
		}
	}

	report, err := bgone.RunBatch(ctx, cf.converter(), fs.Arg(0), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bgone: %v\n", err)
		return 1
	}

	fmt.Printf("Done: %s\n", report.Summary())
	if report.Fatal {
		fmt.Fprintln(os.Stderr, "bgone: batch aborted after segmentation failure")
		return 1
	}
	if report.Cancelled {
		fmt.Fprintln(os.Stderr, "bgone: interrupted")
		return 1
	}
	return 0
}

func cmdWatch(args []string) int {
	fs := flag.NewFlagSet("bgone watch", flag.ContinueOnError)
	var cf convertFlags
	cf.register(fs)
	schedule := fs.String("schedule", "@hourly", "Cron schedule for batch reruns")
	failFast := fs.Bool("fail-fast", false, "Abort each batch when the segmentation backend fails")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bgone watch <folder> [flags]")
		return 2
	}
	cf.setupLogging()

	ctx, stop := signalContext()
	defer stop()

	opts := cf.options(*failFast)
	if !cf.quiet {
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		opts.OnResult = func(i, n int, res bgone.Result) {
			printResult(i, n, res, interactive)
		}
	}

	err := bgone.Watch(ctx, cf.converter(), fs.Arg(0), opts, *schedule, func(r *bgone.Report) {
		fmt.Printf("Batch %s: %s\n", r.RunID, r.Summary())
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bgone: %v\n", err)
		return 1
	}
	return 0
}

func cmdResize(args []string) int {
	fs := flag.NewFlagSet("bgone resize", flag.ContinueOnError)
	out := fs.String("out", "output", "Output directory")
	preset := fs.String("preset", "", "Platform preset: "+strings.Join(resizer.PresetNames(), ", "))
	width := fs.Int("width", 0, "Target width (with --height, instead of --preset)")
	height := fs.Int("height", 0, "Target height (with --width, instead of --preset)")
	modeFlag := fs.String("mode", "fit", "Aspect ratio handling: fit | fill | stretch")
	prefix := fs.String("prefix", "", "Output name prefix for folder input (default: source name)")
	quiet := fs.Bool("quiet", false, "Suppress per-file output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bgone resize <image|folder> [flags]")
		return 2
	}

	mode, err := resizer.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bgone: %v\n", err)
		return 2
	}

	label := "custom"
	w, h := *width, *height
	if *preset != "" {
		p, ok := resizer.PresetByName(*preset)
		if !ok {
			fmt.Fprintf(os.Stderr, "bgone: unknown preset %q (use %s)\n", *preset, strings.Join(resizer.PresetNames(), ", "))
			return 2
		}
		label = p.Name
		w, h = p.Width, p.Height
	}
	if w <= 0 || h <= 0 {
		fmt.Fprintln(os.Stderr, "bgone: need --preset or both --width and --height")
		return 2
	}

	target := fs.Arg(0)
	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bgone: %v\n", err)
		return 1
	}

	var files []string
	if info.IsDir() {
		files, err = bgone.Discover(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bgone: %v\n", err)
			return 1
		}
	} else {
		files = []string{target}
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "bgone: nothing to resize")
		return 0
	}

	failed := 0
	for i, in := range files {
		name := *prefix
		if name == "" {
			base := filepath.Base(in)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		dest := filepath.Join(*out, resizer.GenerateFilename(name, i+1, label, w, h))

		if err := resizer.File(in, dest, w, h, mode); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", in, err)
			continue
		}
		if !*quiet {
			fmt.Printf("Resized: %s -> %s\n", filepath.Base(in), dest)
		}
	}

	if !*quiet && len(files) > 1 {
		fmt.Printf("Done: %d resized, %d failed\n", len(files)-failed, failed)
	}
	if failed == len(files) {
		return 1
	}
	return 0
}

func printResult(i, n int, res bgone.Result, interactive bool) {
	prefix := ""
	if interactive {
		prefix = fmt.Sprintf("[%d/%d] ", i, n)
	}
	base := filepath.Base(res.Source)
	switch res.Outcome {
	case bgone.OutcomeSuccess:
		fmt.Printf("%sProcessed: %s -> %s\n", prefix, base, res.Output)
	case bgone.OutcomeSkipped:
		fmt.Printf("%sSkipped (exists): %s\n", prefix, base)
	default:
		fmt.Printf("%sFailed: %s - %s\n", prefix, base, res.Reason)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `bgone v`+version+` - local background remover

Usage:
  bgone single <image>  [flags]   Convert one image to a transparent PNG
  bgone batch  <folder> [flags]   Convert every supported image in a folder
  bgone watch  <folder> [flags]   Re-run the batch on a cron schedule
  bgone resize <image|folder>     Resize transparent PNGs to platform sizes
  bgone version                   Print version

Shared flags (single/batch/watch):
  --out DIR        Output directory (default: output)
  --suffix STR     Output filename suffix (default: _transparent)
  --overwrite      Overwrite existing outputs
  --server URL     rembg server base URL (default: `+rembg.DefaultBaseURL+`)
  --rembg-cmd PATH Use a local rembg CLI instead of the server
  --model NAME     Segmentation model (default: `+rembg.DefaultModel+`)
  --keep-alpha     Skip removal when the source already has transparency
  --trim           Crop output to the subject bounding box
  --quiet          Suppress per-file output
  --verbose        Enable debug logging

Batch/watch flags:
  --fail-fast      Abort when the segmentation backend fails
  --schedule CRON  Watch schedule (default: @hourly)

Resize flags:
  --preset NAME    `+strings.Join(resizer.PresetNames(), ", ")+`
  --width/--height Custom target size
  --mode MODE      fit (pad), fill (crop), stretch (default: fit)

Supported input formats: jpg, jpeg, png, webp. Output is always PNG with
an alpha channel. Existing outputs are skipped unless --overwrite is set.
`)
}
