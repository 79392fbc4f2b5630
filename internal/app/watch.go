package app

import (
	"context"
	"fmt"
	"time"

	fsw "github.com/corey/xdedup/internal/adapters/fsnotify"
	"github.com/corey/xdedup/internal/ports"
)

// RunFunc receives the outcome of each corpus run in watch mode.
type RunFunc func(run *ports.RunRecord, err error)

// Watch cleans the corpus once, then re-cleans it whenever documents under
// the input directory change and stay unchanged for the settle interval.
// Failed runs are reported to onRun and do not stop watching. Returns when
// ctx is cancelled.
func (a *App) Watch(ctx context.Context, onRun RunFunc) error {
	if onRun == nil {
		onRun = func(*ports.RunRecord, error) {}
	}

	watcher, err := fsw.NewWatcher(a.Source.Accepts, a.cfg.Output, a.Paths.Root)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Stop()

	return a.watchWith(ctx, watcher, onRun)
}

func (a *App) watchWith(ctx context.Context, watcher ports.Watcher, onRun RunFunc) error {
	onRun(a.CleanCorpus())

	changed := make(chan struct{}, 1)
	err := watcher.Watch(a.cfg.Input, func(path string) {
		a.log.Debug().Str("path", path).Msg("document changed")
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.Input, err)
	}
	a.log.Info().Str("input", a.cfg.Input).Dur("settle", a.cfg.Settle).Msg("watching")

	settle := time.NewTimer(a.cfg.Settle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			settle.Reset(a.cfg.Settle)
		case <-settle.C:
			onRun(a.CleanCorpus())
		}
	}
}
