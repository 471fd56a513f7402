package repository

import (
	"context"
	"fmt"

	"KPlayer/model"

	"gorm.io/gorm"
)

// SongRepository defines the songs collection.
type SongRepository interface {
	ListSongsByName(ctx context.Context) ([]*model.Song, error)
	CreateSong(ctx context.Context, s *model.Song) (string, error)
}

type gormSongRepository struct {
	db *gorm.DB
}

// NewGormSongRepository creates a SongRepository on db.
func NewGormSongRepository(db *gorm.DB) SongRepository {
	return &gormSongRepository{db: db}
}

// ListSongsByName returns every song ordered by name ascending.
func (r *gormSongRepository) ListSongsByName(ctx context.Context) ([]*model.Song, error) {
	songs := make([]*model.Song, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	return songs, nil
}

// CreateSong stores s and returns the assigned id.
func (r *gormSongRepository) CreateSong(ctx context.Context, s *model.Song) (string, error) {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return "", fmt.Errorf("failed to create song: %w", err)
	}
	return s.ID, nil
}
