package repository

import (
	"context"
	"errors"
	"fmt"

	"KPlayer/model"

	"gorm.io/gorm"
)

// PlaylistRepository defines the playlist collection and its track subcollection.
type PlaylistRepository interface {
	// ListPlaylists returns playlists in store order, at most limit when limit > 0.
	ListPlaylists(ctx context.Context, limit int) ([]*model.Playlist, error)

	// GetPlaylistByID returns nil, nil when no playlist has this id.
	GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error)

	// GetPlaylistTracks returns the playlist's tracks by order key, unordered tracks last.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]*model.Track, error)

	// CreatePlaylist stores p and returns the id the store assigned.
	CreatePlaylist(ctx context.Context, p *model.Playlist) (string, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a PlaylistRepository on db.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) ListPlaylists(ctx context.Context, limit int) ([]*model.Playlist, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	playlists := make([]*model.Playlist, 0)
	if err := q.Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	return playlists, nil
}

func (r *gormPlaylistRepository) GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	var p model.Playlist
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}
	return &p, nil
}

func (r *gormPlaylistRepository) GetPlaylistTracks(ctx context.Context, playlistID string) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	err := r.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID).
		Order("sort_order IS NULL").
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks of playlist %s: %w", playlistID, err)
	}
	return tracks, nil
}

func (r *gormPlaylistRepository) CreatePlaylist(ctx context.Context, p *model.Playlist) (string, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}
	return p.ID, nil
}
