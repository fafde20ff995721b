// Package assets serves and fetches the audio files tracks point at.
package assets

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// ErrAssetNotFound is returned when an asset does not exist.
var ErrAssetNotFound = errors.New("asset not found")

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

// ContentTypeFor returns the audio content type for a file name, or "" when
// the extension is not a known audio format.
func ContentTypeFor(name string) string {
	return contentTypes[strings.ToLower(path.Ext(name))]
}

// Entry describes one file in the library.
type Entry struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Library indexes the audio files of a flat directory.
type Library struct {
	dir string

	mu      sync.RWMutex
	entries map[string]Entry

	watcher   *fsnotify.Watcher
	changes   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewLibrary scans dir. With watch set, the index follows file changes.
func NewLibrary(dir string, watch bool) (*Library, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open asset directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("asset path %s is not a directory", dir)
	}

	l := &Library{
		dir:     dir,
		entries: make(map[string]Entry),
		changes: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
	if err := l.Rescan(); err != nil {
		return nil, err
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create asset watcher")
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		l.watcher = watcher
		go l.watchLoop()
	}

	zlog.Info().Msgf("assets: library ready: dir=%s files=%d watch=%v", dir, len(l.entries), watch)
	return l, nil
}

// Rescan rebuilds the index from disk.
func (l *Library) Rescan() error {
	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read asset directory %s", l.dir)
	}

	entries := make(map[string]Entry, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		ct := ContentTypeFor(de.Name())
		if ct == "" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries[de.Name()] = Entry{
			Name:        de.Name(),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			ContentType: ct,
		}
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// Names returns the indexed file names in lexical order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the entry for name.
func (l *Library) Lookup(name string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[name]
	return e, ok
}

// Open opens an indexed file for reading.
func (l *Library) Open(name string) (*os.File, Entry, error) {
	e, ok := l.Lookup(name)
	if !ok {
		return nil, Entry{}, errors.Wrapf(ErrAssetNotFound, "%s", name)
	}
	f, err := os.Open(filepath.Join(l.dir, e.Name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Entry{}, errors.Wrapf(ErrAssetNotFound, "%s", name)
		}
		return nil, Entry{}, errors.Wrapf(err, "failed to open %s", name)
	}
	return f, e, nil
}

// Changes signals after the index changed. Signals coalesce.
func (l *Library) Changes() <-chan struct{} {
	return l.changes
}

// Close stops watching.
func (l *Library) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
	})
	return err
}

func (l *Library) watchLoop() {
	for {
		select {
		case <-l.closed:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if ContentTypeFor(event.Name) == "" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := l.Rescan(); err != nil {
				zlog.Warn().Err(err).Msg("assets: rescan failed")
				continue
			}
			zlog.Debug().Msgf("assets: %s %s", event.Op, filepath.Base(event.Name))
			select {
			case l.changes <- struct{}{}:
			default:
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			zlog.Warn().Err(err).Msg("assets: watcher error")
		}
	}
}
