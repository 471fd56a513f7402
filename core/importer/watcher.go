package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"KPlayer/core/library"
	"KPlayer/logger"
	"KPlayer/model"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Uploader stores one song.
type Uploader interface {
	Upload(ctx context.Context, in library.SongUpload) (*model.Song, error)
}

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

// Options configures a Watcher.
type Options struct {
	Artist      string        // used when the file name has no "Artist - Title" form
	Collection  string
	UploaderUID string
	Settle      time.Duration // quiet period before a file counts as written
	RateLimit   float64       // uploads per second, <= 0 for unlimited
}

// Result is the outcome of one imported file.
type Result struct {
	Path string
	Song *model.Song
	Err  error
}

// Watcher uploads audio files as they appear in a directory.
type Watcher struct {
	dir      string
	uploader Uploader
	opts     Options
	limiter  *rate.Limiter

	processed sync.Map
}

func NewWatcher(dir string, uploader Uploader, opts Options) *Watcher {
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Watcher{
		dir:      dir,
		uploader: uploader,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run watches the directory until ctx is done, sending one Result per file.
// results may be nil.
func (w *Watcher) Run(ctx context.Context, results chan<- Result) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("watching for songs", logger.String("dir", w.dir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(tickInterval(w.opts.Settle))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && IsAudioFile(event.Name) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < w.opts.Settle {
					continue // still being written
				}
				delete(pending, path)
				if _, loaded := w.processed.LoadOrStore(path, true); loaded {
					continue
				}
				res := w.importFile(ctx, path)
				if results != nil {
					select {
					case results <- res:
					case <-ctx.Done():
						return nil
					}
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logger.ErrorField(err))
		}
	}
}

// tickInterval is how often pending files are checked against settle.
func tickInterval(settle time.Duration) time.Duration {
	const minTick = time.Millisecond
	if tick := settle / 4; tick > minTick {
		return tick
	}
	return minTick
}

func (w *Watcher) importFile(ctx context.Context, path string) Result {
	if err := w.limiter.Wait(ctx); err != nil {
		return Result{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{Path: path, Err: err}
	}

	artist, title := ParseFileName(filepath.Base(path))
	if artist == "" {
		artist = w.opts.Artist
	}

	song, err := w.uploader.Upload(ctx, library.SongUpload{
		File:        f,
		FileName:    filepath.Base(path),
		Size:        info.Size(),
		ContentType: audioExtensions[strings.ToLower(filepath.Ext(path))],
		Name:        title,
		Artist:      artist,
		Collection:  w.opts.Collection,
		UploaderUID: w.opts.UploaderUID,
	})
	if err != nil {
		logger.Warn("failed to import song", logger.String("path", path), logger.ErrorField(err))
		// allow a retry when the file is written again
		w.processed.Delete(path)
		return Result{Path: path, Err: err}
	}

	logger.Info("song imported", logger.String("path", path), logger.String("songId", song.ID))
	return Result{Path: path, Song: song}
}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ParseFileName splits "Artist - Title.ext" into its parts. Without a
// separator the artist is empty and the title is the base name.
func ParseFileName(name string) (artist, title string) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if a, t, ok := strings.Cut(base, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", strings.TrimSpace(base)
}
