package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ariel-frischer/relver/internal/changelog"
	"github.com/ariel-frischer/relver/internal/config"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces bursts of write events (editors often fire
// several per save) into a single re-render.
const watchDebounce = 200 * time.Millisecond

var changelogWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the markdown changelog whenever the source changes",
	Long: `Watch the YAML changelog source and regenerate the markdown output
on every change. Runs until interrupted.

Useful while drafting release notes: keep this running and preview
CHANGELOG.md in your editor or markdown viewer.

Example:
  relver changelog watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runChangelogWatch(ctx, cmd)
	},
}

func init() {
	changelogCmd.AddCommand(changelogWatchCmd)
}

func runChangelogWatch(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	// Initial render so the output exists before the first change.
	if log, err := loadChangelog(cfg); err == nil {
		if err := syncChangelogOutput(log, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.ChangelogOutput)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for %s: %v\n", cfg.ChangelogFile, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory rather than the file itself: saves that
	// go through a temp-file rename replace the inode and would silently
	// detach a direct file watch.
	dir := filepath.Dir(cfg.ChangelogFile)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", cfg.ChangelogFile)
	return watchLoop(ctx, cmd, cfg, watcher)
}

func watchLoop(ctx context.Context, cmd *cobra.Command, cfg *config.Configuration, watcher *fsnotify.Watcher) error {
	target, err := filepath.Abs(cfg.ChangelogFile)
	if err != nil {
		return err
	}

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceC = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}
		case <-debounceC:
			renderOnChange(cmd, cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}

// renderOnChange reloads the source and rewrites the output, reporting
// parse failures without stopping the watch.
func renderOnChange(cmd *cobra.Command, cfg *config.Configuration) {
	log, err := changelog.Load(cfg.ChangelogFile)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", cfg.ChangelogFile, err)
		return
	}
	if err := syncChangelogOutput(log, cfg); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] Wrote %s\n", time.Now().Format("15:04:05"), cfg.ChangelogOutput)
}
