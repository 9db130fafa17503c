package token

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/mkowalczyk/allerlog/internal/logging"
)

// Watch adopts external changes to the mirror file into memory until ctx is
// cancelled: another process logging in or out updates this process too.
// It is a passive sync only; no application logic fires on adoption.
//
// The parent directory is watched rather than the file itself so create and
// remove events are observed.
func (s *Store) Watch(ctx context.Context, log logging.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			s.reload(ctx, log)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "token watcher error", "error", err)
		}
	}
}

func (s *Store) reload(ctx context.Context, log logging.Logger) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.adopt("")
			log.Debug(ctx, "token cleared externally")
			return
		}
		log.Warn(ctx, "failed to reload token file", "error", err)
		return
	}
	s.adopt(strings.TrimSpace(string(data)))
	log.Debug(ctx, "token adopted from external change")
}
