package repository

import (
	"context"
	"errors"
	"fmt"

	"KPlayer/model"

	"gorm.io/gorm"
)

// ErrPlaylistNotFound is returned when tracks are added to a missing playlist.
var ErrPlaylistNotFound = errors.New("playlist not found")

// TrackRepository writes a playlist's track subcollection.
type TrackRepository interface {
	AddTrack(ctx context.Context, playlistID string, track *model.Track) (string, error)
	SetLiked(ctx context.Context, playlistID, trackID string, liked bool) error
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a TrackRepository on db.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

// AddTrack appends track to the playlist. Without an explicit order the track
// goes after the current last ordered track.
func (r *gormTrackRepository) AddTrack(ctx context.Context, playlistID string, track *model.Track) (string, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Playlist{}).Where("id = ?", playlistID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check playlist %s: %w", playlistID, err)
		}
		if count == 0 {
			return ErrPlaylistNotFound
		}

		if track.Order == nil {
			var maxOrder int
			err := tx.Model(&model.Track{}).
				Where("playlist_id = ?", playlistID).
				Select("COALESCE(MAX(sort_order), 0)").
				Scan(&maxOrder).Error
			if err != nil {
				return fmt.Errorf("failed to read track order: %w", err)
			}
			next := maxOrder + 1
			track.Order = &next
		}

		track.PlaylistID = playlistID
		if err := tx.Create(track).Error; err != nil {
			return fmt.Errorf("failed to create track: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return track.ID, nil
}

// SetLiked sets the liked flag of one track. Setting it to its current value
// succeeds; an unknown track is gorm.ErrRecordNotFound.
func (r *gormTrackRepository) SetLiked(ctx context.Context, playlistID, trackID string, liked bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Track{}).
			Where("id = ? AND playlist_id = ?", trackID, playlistID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check track %s: %w", trackID, err)
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		err = tx.Model(&model.Track{}).
			Where("id = ? AND playlist_id = ?", trackID, playlistID).
			Update("liked", liked).Error
		if err != nil {
			return fmt.Errorf("failed to update track %s: %w", trackID, err)
		}
		return nil
	})
}
