package bgone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Watch runs one batch immediately and then re-runs it on the cron
// schedule until ctx is cancelled. Reruns are cheap no-ops for already
// processed files because of the skip-if-exists policy. onReport receives
// every completed report; batches never overlap.
func Watch(ctx context.Context, c *Converter, folder string, opts Options, schedule string, onReport func(*Report)) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("parse schedule %q: %w", schedule, err)
	}

	runOnce := func() {
		report, err := RunBatch(ctx, c, folder, opts)
		if err != nil {
			slog.Error("watch batch failed", "folder", folder, "error", err)
			return
		}
		if onReport != nil {
			onReport(report)
		}
	}

	runOnce()
	if ctx.Err() != nil {
		return nil
	}

	cr := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := cr.AddFunc(schedule, runOnce); err != nil {
		return fmt.Errorf("schedule watch: %w", err)
	}

	cr.Start()
	<-ctx.Done()
	<-cr.Stop().Done()
	return nil
}
