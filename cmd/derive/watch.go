package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/derive/compiler"
	"github.com/syssam/derive/compiler/gen"
)

// debounceDelay batches the events of one editor save or checkout.
const debounceDelay = 200 * time.Millisecond

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
}

// watch generates once, then again every time a Go source file under the
// working directory changes, until the context is canceled.
func (c *cli) watch(ctx context.Context, cfg *gen.Config, patterns []string) error {
	g, err := gen.NewGenerator(cfg)
	if err != nil {
		return err
	}
	suffix := g.Config().Suffix
	run := func() {
		if err := compiler.GenerateDir(ctx, cfg, c.dir, patterns...); err != nil && ctx.Err() == nil {
			c.log.Error("generation failed", "error", err)
		}
	}
	run()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	root := c.dir
	if root == "" {
		root = "."
	}
	dirs, err := watchDirs(root)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			c.log.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}
	c.log.Info("watching for changes", "dirs", len(dirs))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if sub, err := watchDirs(event.Name); err == nil {
					for _, dir := range sub {
						_ = watcher.Add(dir)
					}
				}
			}
			if !isSourceEvent(event, suffix) {
				continue
			}
			c.log.Debug("source changed", "file", event.Name, "op", event.Op.String())
			fire = time.After(debounceDelay)
		case <-fire:
			fire = nil
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Error("watcher error", "error", err)
		}
	}
}

// isSourceEvent reports if an event changes a Go file that is not a
// generated output.
func isSourceEvent(event fsnotify.Event, suffix string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(event.Name, ".go") && !gen.IsGenerated(event.Name, suffix)
}

// watchDirs returns root and its subdirectories, skipping hidden and
// vendored trees. A root that is not a directory yields nothing.
func watchDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}
