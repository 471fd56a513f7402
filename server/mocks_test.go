package server

import (
	"context"
	"io"
	"sync"

	"KPlayer/config"
	"KPlayer/core/auth"
	"KPlayer/model"
)

const testToken = "valid-token"

type MockAuth struct {
	SignUpFunc func(ctx context.Context, name, email, password string) (*auth.Identity, error)
	SignInFunc func(ctx context.Context, email, password string) (*auth.Identity, error)

	mu      sync.Mutex
	revoked []string
}

func (m *MockAuth) SignUp(ctx context.Context, name, email, password string) (*auth.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, name, email, password)
	}
	return &auth.Identity{UID: "user-1", DisplayName: name, Email: email, Token: testToken}, nil
}

func (m *MockAuth) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return &auth.Identity{UID: "user-1", Email: email, Token: testToken}, nil
}

func (m *MockAuth) SignOut(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked = append(m.revoked, token)
	return nil
}

func (m *MockAuth) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.revoked {
		if t == token {
			return nil, auth.ErrInvalidToken
		}
	}
	if token != testToken {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{UID: "user-1", Email: "a@example.com", Token: token}, nil
}

type MockPlaylists struct {
	ListPlaylistsFunc     func(ctx context.Context, limit int) ([]*model.Playlist, error)
	GetPlaylistByIDFunc   func(ctx context.Context, id string) (*model.Playlist, error)
	GetPlaylistTracksFunc func(ctx context.Context, playlistID string) ([]*model.Track, error)
	CreatePlaylistFunc    func(ctx context.Context, p *model.Playlist) (string, error)
}

func (m *MockPlaylists) ListPlaylists(ctx context.Context, limit int) ([]*model.Playlist, error) {
	if m.ListPlaylistsFunc != nil {
		return m.ListPlaylistsFunc(ctx, limit)
	}
	return []*model.Playlist{}, nil
}

func (m *MockPlaylists) GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	if m.GetPlaylistByIDFunc != nil {
		return m.GetPlaylistByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPlaylists) GetPlaylistTracks(ctx context.Context, playlistID string) ([]*model.Track, error) {
	if m.GetPlaylistTracksFunc != nil {
		return m.GetPlaylistTracksFunc(ctx, playlistID)
	}
	return []*model.Track{}, nil
}

func (m *MockPlaylists) CreatePlaylist(ctx context.Context, p *model.Playlist) (string, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, p)
	}
	return "new-id", nil
}

type MockTracks struct {
	AddTrackFunc func(ctx context.Context, playlistID string, track *model.Track) (string, error)
	SetLikedFunc func(ctx context.Context, playlistID, trackID string, liked bool) error
}

func (m *MockTracks) AddTrack(ctx context.Context, playlistID string, track *model.Track) (string, error) {
	if m.AddTrackFunc != nil {
		return m.AddTrackFunc(ctx, playlistID, track)
	}
	return "track-id", nil
}

func (m *MockTracks) SetLiked(ctx context.Context, playlistID, trackID string, liked bool) error {
	if m.SetLikedFunc != nil {
		return m.SetLikedFunc(ctx, playlistID, trackID, liked)
	}
	return nil
}

type MockSongs struct {
	ListSongsByNameFunc func(ctx context.Context) ([]*model.Song, error)
	CreateSongFunc      func(ctx context.Context, s *model.Song) (string, error)
}

func (m *MockSongs) ListSongsByName(ctx context.Context) ([]*model.Song, error) {
	if m.ListSongsByNameFunc != nil {
		return m.ListSongsByNameFunc(ctx)
	}
	return []*model.Song{}, nil
}

func (m *MockSongs) CreateSong(ctx context.Context, s *model.Song) (string, error) {
	if m.CreateSongFunc != nil {
		return m.CreateSongFunc(ctx, s)
	}
	return "song-id", nil
}

type MockBlobs struct {
	UploadFunc func(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error
}

func (m *MockBlobs) PresignedURL(ctx context.Context, objectPath string) (string, error) {
	return "https://blobs.test/" + objectPath, nil
}

func (m *MockBlobs) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, objectPath, r, size, contentType)
	}
	_, err := io.Copy(io.Discard, r)
	return err
}

func testConfig() *config.Config {
	return &config.Config{PlaceholderCover: "covers/placeholder.jpg"}
}
