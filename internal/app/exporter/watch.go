package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultWatchDebounce = 300 * time.Millisecond

// Watch runs the export once, then again after snapshot JSON files change,
// until ctx is done. Bursts of events within debounce collapse into one run.
// onRun receives every outcome; a failed run does not stop watching.
func (e Exporter) Watch(ctx context.Context, debounce time.Duration, onRun func(Result, error)) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := snapshotDirs(e.Config.Input)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	logrus.WithFields(logrus.Fields{"input": e.Config.Input, "dirs": len(dirs)}).Info("watching snapshot")

	run := func() {
		res, err := e.Run(ctx)
		onRun(res, err)
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logrus.WithError(err).WithField("dir", event.Name).Warn("cannot watch new directory")
					}
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logrus.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("snapshot changed")
			timer.Reset(debounce)
		case <-timer.C:
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("watcher error")
		}
	}
}

// snapshotDirs lists the snapshot directory and its existing subdirectories.
func snapshotDirs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", input, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", input)
	}
	dirs := []string{input}
	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", input, err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			dirs = append(dirs, filepath.Join(input, ent.Name()))
		}
	}
	return dirs, nil
}
