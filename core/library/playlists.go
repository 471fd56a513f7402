package library

import (
	"context"
	"sync"

	"KPlayer/logger"
	"KPlayer/model"

	"golang.org/x/sync/errgroup"
)

// PlaylistReader is the read side of the playlist collection.
type PlaylistReader interface {
	ListPlaylists(ctx context.Context, limit int) ([]*model.Playlist, error)
	GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]*model.Track, error)
}

// PlaylistLoader fetches playlists and resolves their covers.
type PlaylistLoader struct {
	store   PlaylistReader
	gateway *Gateway
}

func NewPlaylistLoader(store PlaylistReader, gateway *Gateway) *PlaylistLoader {
	return &PlaylistLoader{store: store, gateway: gateway}
}

// ListPlaylists queries at most limit playlists (all when limit <= 0) and resolves
// every cover concurrently. The output keeps the store's order.
func (l *PlaylistLoader) ListPlaylists(ctx context.Context, limit int) ([]*model.Playlist, error) {
	playlists, err := l.store.ListPlaylists(ctx, limit)
	if err != nil {
		return nil, err
	}

	resolved := make([]*model.Playlist, len(playlists))
	var g errgroup.Group
	for i, p := range playlists {
		i, p := i, p
		g.Go(func() error {
			cp := *p
			cp.Image = l.gateway.ResolveImage(ctx, p.Image)
			resolved[i] = &cp
			return nil
		})
	}
	// ResolveImage never fails, so Wait only joins.
	_ = g.Wait()

	return resolved, nil
}

// Load runs ListPlaylists and folds the outcome into a Result.
func (l *PlaylistLoader) Load(ctx context.Context, limit int) Result[[]*model.Playlist] {
	playlists, err := l.ListPlaylists(ctx, limit)
	if err != nil {
		logger.Error("failed to load playlists", logger.ErrorField(err))
		return Failure[[]*model.Playlist](err)
	}
	return Success(playlists)
}

// Index maps playlist ids to their card metadata.
func Index(playlists []*model.Playlist) map[string]model.PlaylistSummary {
	out := make(map[string]model.PlaylistSummary, len(playlists))
	for _, p := range playlists {
		out[p.ID] = p.Summary()
	}
	return out
}

// PlaylistList is the observable state of one mounted playlist browser.
type PlaylistList struct {
	loader *PlaylistLoader
	limit  int

	mu         sync.Mutex
	current    Result[[]*model.Playlist]
	generation int // bumped per Refresh so an overtaken load is not published
	nextID     int
	subs       map[int]func(Result[[]*model.Playlist])
}

// NewPlaylistList starts in the Loading state; call Refresh to fetch.
func NewPlaylistList(loader *PlaylistLoader, limit int) *PlaylistList {
	return &PlaylistList{
		loader:  loader,
		limit:   limit,
		current: Loading[[]*model.Playlist](),
		subs:    make(map[int]func(Result[[]*model.Playlist])),
	}
}

// Refresh reloads the list, publishing Loading and then the outcome. When a
// newer Refresh starts before this one finishes, only the newer outcome is
// published; the returned result is this call's own.
func (pl *PlaylistList) Refresh(ctx context.Context) Result[[]*model.Playlist] {
	pl.mu.Lock()
	pl.generation++
	generation := pl.generation
	pl.mu.Unlock()

	pl.publish(generation, Loading[[]*model.Playlist]())
	res := pl.loader.Load(ctx, pl.limit)
	pl.publish(generation, res)
	return res
}

// Current returns the latest state.
func (pl *PlaylistList) Current() Result[[]*model.Playlist] {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.current
}

// Index maps ids to card metadata for the currently loaded list; empty unless loaded.
func (pl *PlaylistList) Index() map[string]model.PlaylistSummary {
	playlists, _ := pl.Current().Data()
	return Index(playlists)
}

// Subscribe registers fn for every state change. The returned func unsubscribes.
func (pl *PlaylistList) Subscribe(fn func(Result[[]*model.Playlist])) func() {
	pl.mu.Lock()
	id := pl.nextID
	pl.nextID++
	pl.subs[id] = fn
	pl.mu.Unlock()

	return func() {
		pl.mu.Lock()
		delete(pl.subs, id)
		pl.mu.Unlock()
	}
}

func (pl *PlaylistList) publish(generation int, res Result[[]*model.Playlist]) {
	pl.mu.Lock()
	if generation != pl.generation {
		pl.mu.Unlock()
		return
	}
	pl.current = res
	subs := make([]func(Result[[]*model.Playlist]), 0, len(pl.subs))
	for _, fn := range pl.subs {
		subs = append(subs, fn)
	}
	pl.mu.Unlock()

	for _, fn := range subs {
		fn(res)
	}
}
