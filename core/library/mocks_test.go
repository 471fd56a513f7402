package library

import (
	"context"
	"io"
	"sync"

	"KPlayer/model"
)

type MockPresigner struct {
	PresignedURLFunc func(ctx context.Context, objectPath string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockPresigner) PresignedURL(ctx context.Context, objectPath string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, objectPath)
	m.mu.Unlock()
	if m.PresignedURLFunc != nil {
		return m.PresignedURLFunc(ctx, objectPath)
	}
	return "https://blobs.test/" + objectPath, nil
}

func (m *MockPresigner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type MockPlaylistStore struct {
	ListPlaylistsFunc     func(ctx context.Context, limit int) ([]*model.Playlist, error)
	GetPlaylistByIDFunc   func(ctx context.Context, id string) (*model.Playlist, error)
	GetPlaylistTracksFunc func(ctx context.Context, playlistID string) ([]*model.Track, error)
	CreatePlaylistFunc    func(ctx context.Context, p *model.Playlist) (string, error)

	mu          sync.Mutex
	listCalls   int
	createCalls int
}

func (m *MockPlaylistStore) ListPlaylists(ctx context.Context, limit int) ([]*model.Playlist, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListPlaylistsFunc != nil {
		return m.ListPlaylistsFunc(ctx, limit)
	}
	return []*model.Playlist{}, nil
}

func (m *MockPlaylistStore) GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	if m.GetPlaylistByIDFunc != nil {
		return m.GetPlaylistByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPlaylistStore) GetPlaylistTracks(ctx context.Context, playlistID string) ([]*model.Track, error) {
	if m.GetPlaylistTracksFunc != nil {
		return m.GetPlaylistTracksFunc(ctx, playlistID)
	}
	return []*model.Track{}, nil
}

func (m *MockPlaylistStore) CreatePlaylist(ctx context.Context, p *model.Playlist) (string, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, p)
	}
	return "new-id", nil
}

func (m *MockPlaylistStore) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *MockPlaylistStore) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

type MockSongStore struct {
	ListSongsByNameFunc func(ctx context.Context) ([]*model.Song, error)
	CreateSongFunc      func(ctx context.Context, s *model.Song) (string, error)
}

func (m *MockSongStore) ListSongsByName(ctx context.Context) ([]*model.Song, error) {
	if m.ListSongsByNameFunc != nil {
		return m.ListSongsByNameFunc(ctx)
	}
	return []*model.Song{}, nil
}

func (m *MockSongStore) CreateSong(ctx context.Context, s *model.Song) (string, error) {
	if m.CreateSongFunc != nil {
		return m.CreateSongFunc(ctx, s)
	}
	return "song-id", nil
}

type MockUploader struct {
	UploadFunc func(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error
}

func (m *MockUploader) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, objectPath, r, size, contentType)
	}
	return nil
}

// noticeRecorder collects notices in the order they were sent.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *noticeRecorder) Levels() []NoticeLevel {
	var levels []NoticeLevel
	for _, n := range r.All() {
		levels = append(levels, n.Level)
	}
	return levels
}
