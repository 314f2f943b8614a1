package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/folio/measure"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/schedule"
)

// newWatchCmd creates the watch command, which repaginates a document on
// every save and prints an updated summary after each pass.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Repaginate a document on every save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), args[0])
		},
	}

	cmd.Flags().Duration("interval", 16*time.Millisecond, "coalescing window between a save and the pagination pass")
	_ = viper.BindPFlag("watch.interval", cmd.Flags().Lookup("interval"))

	return cmd
}

// runWatch feeds file-save notifications into a pagination scheduler until
// ctx is cancelled. The directory is watched rather than the file itself, so
// editors that save by rename-and-replace do not detach the watch.
func runWatch(ctx context.Context, file string) error {
	logger := loggerFromContext(ctx)

	page, err := pageFromConfig()
	if err != nil {
		return err
	}
	cfg := measureFromConfig(page)

	// Reject unsupported documents before the watch loop starts.
	if _, err := openDocument(file); err != nil {
		return err
	}

	target, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", file, err)
	}

	source := schedule.SourceFunc(func() ([]model.BlockGeometry, error) {
		return readGeometry(target, page, cfg)
	})

	interval := viper.GetDuration("watch.interval")
	sched := schedule.NewSchedulerWithConfig(source, schedule.SchedulerConfig{
		Page:     page,
		Interval: interval,
		Logger:   logger,
	})
	sched.Subscribe(func(res model.PaginationResult) {
		logger.Infof("%s: %d pages, %d breaks", filepath.Base(target), res.TotalPages, len(res.Breaks))
	})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	sched.Start(ctx)
	defer sched.Stop()

	// Initial pass so the summary appears before the first save.
	sched.NotifyMutated()

	logger.Infof("Watching %s (interval %s); press Ctrl-C to stop", file, interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("document changed", "op", ev.Op.String())
			sched.NotifyMutated()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "err", err)
		}
	}
}

// readGeometry loads and measures the document, retrying briefly so the
// short window where an editor has replaced but not yet finished writing
// the file reads as one transient failure instead of several.
func readGeometry(path string, page model.PageSpec, cfg measure.Config) ([]model.BlockGeometry, error) {
	var geoms []model.BlockGeometry

	err := retry.Do(
		func() error {
			doc, err := openDocument(path)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			g, err := doc.Page(page).Measure(cfg).Geometry()
			if err != nil {
				return err
			}
			geoms = g
			return nil
		},
		retry.Attempts(3),
		retry.Delay(20*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	return geoms, nil
}
