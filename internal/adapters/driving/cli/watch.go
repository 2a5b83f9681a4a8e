package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/researchbot/researchbot/internal/logger"
)

// defaultDebounce batches bursts of filesystem events into one pass.
const defaultDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the upload directory and index changes continuously",
	Long: `Watches the upload directory for changes. After a quiet period a
reconcile pass runs and queued jobs are executed until the queue drains.
Press Ctrl+C to stop.`,
	RunE: runWatch,
}

// watchDebounce is a flag for the watch command.
var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVarP(&watchDebounce, "debounce", "d", defaultDebounce, "Quiet period before reacting to changes")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if reconcilerService == nil || indexWorker == nil {
		return errors.New("reconciler or worker not configured")
	}
	if uploadDir == "" {
		return errors.New("upload directory not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial pass picks up anything that changed while not watching.
	if err := runPass(ctx, cmd); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(uploadDir); err != nil {
		return fmt.Errorf("watching %s: %w", uploadDir, err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)...\n", uploadDir)

	// The timer is armed on the first event and reset on each following
	// one, so a burst of writes triggers a single pass.
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopping.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			logger.Debug("watch event: %s", event)
			debounce.Reset(watchDebounce)

			// New subdirectories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watcher.Add(event.Name); addErr != nil {
						logger.Warn("cannot watch %s: %v", event.Name, addErr)
					}
				}
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", watchErr)

		case <-debounce.C:
			if err := runPass(ctx, cmd); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Warn("pass failed: %v", err)
			}
		}
	}
}

// relevantEvent filters out event noise that cannot change the catalog.
func relevantEvent(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}

// runPass reconciles once and drains the job queue.
func runPass(ctx context.Context, cmd *cobra.Command) error {
	summary, err := reconcilerService.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	if summary.Enqueued > 0 {
		cmd.Printf("Queued %d jobs.\n", summary.Enqueued)
	}

	for {
		report, err := indexWorker.ProcessJobs(ctx, 0)
		if err != nil {
			return fmt.Errorf("work failed: %w", err)
		}
		if report.Processed > 0 {
			cmd.Printf("Processed %d jobs: %d succeeded, %d failed.\n",
				report.Processed, report.Succeeded, report.Failed)
		}
		if report.Remaining == 0 {
			return nil
		}
	}
}
