package settings

import (
	"context"
	"path/filepath"
	"time"

	"github.com/legion-tools/LegionManager/util"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const reloadDebounce = time.Millisecond * 250

// Watch calls fn with the new snapshot every time the configuration file
// changes and reloads successfully. Bursts of file events are coalesced. It
// blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, fn func(Settings)) error {
	file := s.ConfigFile()
	if file == "" {
		s.logger.Info().Msg("no configuration file to watch")
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "settings: cannot create file watcher")
	}
	defer watcher.Close()

	// editors replace the file, so the directory is watched
	file = filepath.Clean(file)
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return errors.Wrap(err, "settings: cannot watch configuration directory")
	}

	noisy, clean := util.Debounce(ctx, reloadDebounce)

	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != file {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			select {
			case noisy <- evt:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("configuration watcher error")

		case ev := <-clean:
			next, err := s.Reload()
			if err != nil {
				s.logger.Error().Err(err).Msg("cannot reload configuration, keeping previous settings")
				continue
			}
			s.logger.Info().Int64("events", ev.Counter).Msg("configuration reloaded")
			fn(next)

		case <-ctx.Done():
			return nil
		}
	}
}
