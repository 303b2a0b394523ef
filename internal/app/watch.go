package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/watcher"
)

// RunFile replays the script at path and renders the report to w.
func (a *Application) RunFile(w io.Writer, path string, format Format) (*Report, error) {
	report, err := a.ReplayFile(path)
	if err != nil {
		return nil, err
	}
	if err := Render(w, report, format, a.cfg.Preview); err != nil {
		return nil, err
	}
	return report, nil
}

// Watch replays the script at path, then replays it again every time the
// script or the config file changes, until ctx is done. Replay errors are
// written to w and do not stop watching.
func (a *Application) Watch(ctx context.Context, w io.Writer, path string, format Format, opts ...watcher.Option) error {
	if path == "" {
		return ErrNoScript
	}
	opts = append([]watcher.Option{watcher.WithLogger(a.logger)}, opts...)
	fw, err := watcher.New(opts...)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(path); err != nil {
		return err
	}
	if a.configPath != "" {
		if err := fw.Add(a.configPath); err != nil && !errors.Is(err, watcher.ErrPathNotExist) {
			return err
		}
	}

	a.rerun(w, path, format)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			a.logger.Info("file changed",
				zap.String("path", ev.Path),
				zap.Stringer("op", ev.Op),
			)
			if a.configPath != "" && fw.IsWatching(a.configPath) && sameFile(ev.Path, a.configPath) {
				a.reloadConfig(w)
			}
			if ev.Op.Has(watcher.OpRemove) {
				continue
			}
			a.rerun(w, path, format)
		case err, ok := <-fw.Errors():
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (a *Application) rerun(w io.Writer, path string, format Format) {
	if _, err := a.RunFile(w, path, format); err != nil {
		a.logger.Error("replay failed", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(w, "error: %v\n", err)
	}
}

func (a *Application) reloadConfig(w io.Writer) {
	cfg, err := config.Load(a.configPath, config.WithFS(a.fs))
	if err != nil {
		a.logger.Error("config reload failed", zap.String("path", a.configPath), zap.Error(err))
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	a.cfg = cfg
	a.logger.Info("config reloaded", zap.String("path", a.configPath))
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
