package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Track is an entry of a playlist's track subcollection.
type Track struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	PlaylistID string    `json:"-" gorm:"size:36;not null;index"`
	Title      string    `json:"title" gorm:"size:255"`
	Artist     string    `json:"artist" gorm:"size:255"`
	Album      string    `json:"album" gorm:"size:255"`
	Duration   string    `json:"duration" gorm:"size:16"` // display string, e.g. "3:07"
	Liked      bool      `json:"liked"`
	Order      *int      `json:"order,omitempty" gorm:"column:sort_order"`
	CreatedAt  time.Time `json:"-" gorm:"autoCreateTime"`
}

// TableName keeps tracks scoped under playlists.
func (Track) TableName() string {
	return "playlist_tracks"
}

func (t *Track) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
