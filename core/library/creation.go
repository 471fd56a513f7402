package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"KPlayer/logger"
	"KPlayer/model"
)

var (
	ErrNameRequired   = errors.New("playlist name is required")
	ErrSubmitInFlight = errors.New("playlist creation already in progress")
	ErrDialogClosed   = errors.New("playlist dialog is not open")
)

// PlaylistWriter is the write side of the playlist collection.
type PlaylistWriter interface {
	CreatePlaylist(ctx context.Context, p *model.Playlist) (string, error)
}

// DialogState is the phase of the creation dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSubmitting
)

func (s DialogState) String() string {
	switch s {
	case DialogClosed:
		return "closed"
	case DialogOpen:
		return "open"
	case DialogSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// FormSnapshot is a copy of the dialog state for rendering.
type FormSnapshot struct {
	State    string                `json:"state"`
	Name     string                `json:"name"`
	Selected []string              `json:"selected"`
	Songs    Result[[]*model.Song] `json:"songs"`
}

// CreationOption configures a CreationWorkflow.
type CreationOption func(*CreationWorkflow)

// WithNotifier sets where validation, warning and outcome notices go.
func WithNotifier(n Notifier) CreationOption {
	return func(w *CreationWorkflow) { w.notifier = n }
}

// WithOnCreated registers the completion event fired once per created playlist.
func WithOnCreated(fn func(ctx context.Context, id string)) CreationOption {
	return func(w *CreationWorkflow) { w.onCreated = fn }
}

// WithOnChange registers a callback for every form state change.
func WithOnChange(fn func(FormSnapshot)) CreationOption {
	return func(w *CreationWorkflow) { w.onChange = fn }
}

// WithOwner records uid as the owner of created playlists.
func WithOwner(uid string) CreationOption {
	return func(w *CreationWorkflow) { w.ownerUID = uid }
}

// WithoutSongCatalog skips the catalog load on Open, for callers that already
// know the song ids and never show the list.
func WithoutSongCatalog() CreationOption {
	return func(w *CreationWorkflow) { w.catalog = nil }
}

// WithPlaceholderCover sets the cover reference written for new playlists.
func WithPlaceholderCover(ref string) CreationOption {
	return func(w *CreationWorkflow) { w.placeholderCover = ref }
}

// CreationWorkflow is one playlist creation dialog.
type CreationWorkflow struct {
	catalog *SongCatalog
	store   PlaylistWriter

	notifier         Notifier
	onCreated        func(ctx context.Context, id string)
	onChange         func(FormSnapshot)
	ownerUID         string
	placeholderCover string

	mu       sync.Mutex
	state    DialogState
	opened   int // bumped on every Open so stale catalog loads are dropped
	name     string
	selected []string
	songs    Result[[]*model.Song]
}

func NewCreationWorkflow(catalog *SongCatalog, store PlaylistWriter, opts ...CreationOption) *CreationWorkflow {
	w := &CreationWorkflow{
		catalog:  catalog,
		store:    store,
		notifier: discardNotifier{},
		state:    DialogClosed,
		songs:    Loading[[]*model.Song](),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open shows the dialog and starts loading the song catalog in the background.
// The returned channel is closed once the catalog load has finished; callers
// may ignore it. Opening an already open dialog is a no-op.
func (w *CreationWorkflow) Open(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	w.mu.Lock()
	if w.state != DialogClosed {
		w.mu.Unlock()
		close(done)
		return done
	}
	w.state = DialogOpen
	w.opened++
	generation := w.opened
	w.songs = Loading[[]*model.Song]()
	if w.catalog == nil {
		w.songs = Success([]*model.Song{})
	}
	catalog := w.catalog
	w.mu.Unlock()
	w.changed()

	if catalog == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		songs, notice := catalog.ListSongs(ctx)

		w.mu.Lock()
		if w.state == DialogClosed || w.opened != generation {
			// cancelled or reopened while loading
			w.mu.Unlock()
			return
		}
		if notice != nil {
			w.songs = Failure[[]*model.Song](errors.New(notice.Message))
		} else {
			w.songs = Success(songs)
		}
		w.mu.Unlock()

		if notice != nil {
			w.notifier.Notify(*notice)
		}
		w.changed()
	}()

	return done
}

// SetName replaces the name field.
func (w *CreationWorkflow) SetName(name string) error {
	w.mu.Lock()
	if w.state != DialogOpen {
		w.mu.Unlock()
		return w.editError()
	}
	w.name = name
	w.mu.Unlock()
	w.changed()
	return nil
}

// ToggleSong adds songID to the selection, or removes it if already selected.
func (w *CreationWorkflow) ToggleSong(songID string) error {
	w.mu.Lock()
	if w.state != DialogOpen {
		w.mu.Unlock()
		return w.editError()
	}
	idx := -1
	for i, id := range w.selected {
		if id == songID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		w.selected = append(w.selected[:idx], w.selected[idx+1:]...)
	} else {
		w.selected = append(w.selected, songID)
	}
	w.mu.Unlock()
	w.changed()
	return nil
}

// editError must be called with w.mu held.
func (w *CreationWorkflow) editError() error {
	if w.state == DialogSubmitting {
		return ErrSubmitInFlight
	}
	return ErrDialogClosed
}

// Submitting reports whether a submission is in flight; front ends disable the
// create trigger while it is true.
func (w *CreationWorkflow) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == DialogSubmitting
}

// State returns the dialog phase.
func (w *CreationWorkflow) State() DialogState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot copies the current form state.
func (w *CreationWorkflow) Snapshot() FormSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *CreationWorkflow) snapshotLocked() FormSnapshot {
	selected := make([]string, len(w.selected))
	copy(selected, w.selected)
	return FormSnapshot{
		State:    w.state.String(),
		Name:     w.name,
		Selected: selected,
		Songs:    w.songs,
	}
}

// Submit validates the form and writes the playlist. On success the form is
// cleared, the dialog closes and the completion event fires; on a write
// failure the form is kept and the dialog stays open for a retry.
func (w *CreationWorkflow) Submit(ctx context.Context) (string, error) {
	w.mu.Lock()
	switch w.state {
	case DialogSubmitting:
		w.mu.Unlock()
		return "", ErrSubmitInFlight
	case DialogClosed:
		w.mu.Unlock()
		return "", ErrDialogClosed
	}

	title := strings.TrimSpace(w.name)
	if title == "" {
		w.mu.Unlock()
		w.notifier.Notify(Notice{
			Level:   NoticeError,
			Title:   "Playlist name required",
			Message: "Please enter a name for your playlist.",
		})
		return "", ErrNameRequired
	}

	songIDs := make([]string, len(w.selected))
	copy(songIDs, w.selected)
	w.state = DialogSubmitting
	w.mu.Unlock()
	w.changed()

	// Empty playlists are allowed; the warning is advisory.
	if len(songIDs) == 0 {
		w.notifier.Notify(Notice{
			Level:   NoticeWarning,
			Title:   "No songs selected",
			Message: "The playlist will be created empty.",
		})
	}

	playlist := &model.Playlist{
		Title:       title,
		Image:       w.placeholderCover,
		SongIDs:     songIDs,
		TracksCount: len(songIDs),
	}
	if w.ownerUID != "" {
		owner := w.ownerUID
		playlist.OwnerUID = &owner
	}

	id, err := w.store.CreatePlaylist(ctx, playlist)
	if err != nil {
		w.mu.Lock()
		w.state = DialogOpen
		w.mu.Unlock()

		logger.Error("failed to create playlist", logger.String("title", title), logger.ErrorField(err))
		w.notifier.Notify(Notice{
			Level:   NoticeError,
			Title:   "Failed to create playlist",
			Message: err.Error(),
		})
		w.changed()
		return "", fmt.Errorf("create playlist: %w", err)
	}

	w.mu.Lock()
	w.reset()
	w.mu.Unlock()

	logger.Info("playlist created",
		logger.String("playlistId", id),
		logger.String("title", title),
		logger.Int("songs", len(songIDs)))
	w.notifier.Notify(Notice{
		Level:   NoticeSuccess,
		Title:   "Playlist created",
		Message: fmt.Sprintf("%q has been created.", title),
	})
	w.changed()

	if w.onCreated != nil {
		w.onCreated(ctx, id)
	}
	return id, nil
}

// Cancel clears the form and closes the dialog. It is ignored while submitting.
func (w *CreationWorkflow) Cancel() {
	w.mu.Lock()
	if w.state == DialogSubmitting {
		w.mu.Unlock()
		return
	}
	w.reset()
	w.mu.Unlock()
	w.changed()
}

// reset must be called with w.mu held.
func (w *CreationWorkflow) reset() {
	w.state = DialogClosed
	w.name = ""
	w.selected = nil
	w.songs = Loading[[]*model.Song]()
}

func (w *CreationWorkflow) changed() {
	if w.onChange == nil {
		return
	}
	w.onChange(w.Snapshot())
}
