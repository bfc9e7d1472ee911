package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/gesture/internal/config"
	"github.com/phanxgames/gesture/internal/logging"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// watchScripts replays the scripts named by args whenever one of them
// changes, and all of them when the config file changes. Returns when ctx
// is cancelled.
func watchScripts(ctx context.Context, out io.Writer, opts *ReplayOptions, m *config.Manager, args []string, parallel int) error {
	log := logging.FromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create watcher", err)
	}
	defer w.Close()

	dirs, err := watchTargets(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve watch targets", err)
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return WrapExitError(ExitCommandError, "failed to watch "+dir, err)
		}
	}

	reload := make(chan struct{}, 1)
	m.OnConfigChange(func(*config.Config) {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	m.Watch()

	log.Info().Strs("dirs", dirs).Msg("watching scripts")

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time
	all := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(ev.Name) != ".json" || !isTarget(ev.Name, args) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}

		case <-reload:
			log.Info().Str("file", m.File()).Msg("config changed")
			all = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
			continue

		case <-fire:
			fire = nil
			paths, err := changedScripts(pending, all, args)
			pending = map[string]struct{}{}
			all = false
			if err != nil {
				log.Warn().Err(err).Msg("failed to collect scripts")
				continue
			}
			if len(paths) == 0 {
				continue
			}
			report, err := replayAll(ctx, m.Get().Arena, paths, parallel)
			if err != nil {
				return nil
			}
			if err := writeReport(out, opts.Format, report); err != nil {
				return WrapExitError(ExitCommandError, "failed to write report", err)
			}
			continue
		}

		if timer == nil {
			timer = time.NewTimer(watchDebounce)
		} else {
			timer.Reset(watchDebounce)
		}
		fire = timer.C
	}
}

// watchTargets returns the directories to watch: each directory argument
// and the parent of each file argument.
func watchTargets(args []string) ([]string, error) {
	var dirs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		dir := filepath.Clean(arg)
		if !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// isTarget reports whether path is one of the script arguments or lives in
// a directory argument.
func isTarget(path string, args []string) bool {
	path = filepath.Clean(path)
	for _, arg := range args {
		arg = filepath.Clean(arg)
		if path == arg || filepath.Dir(path) == arg {
			return true
		}
	}
	return false
}

func changedScripts(pending map[string]struct{}, all bool, args []string) ([]string, error) {
	if all {
		return collectScripts(args)
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths, nil
}
