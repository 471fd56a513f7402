package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Playlist is a user playlist document.
type Playlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Image       string    `json:"image" gorm:"size:1024"` // URL or storage path
	TracksCount int       `json:"tracksCount" gorm:"not null;default:0"`
	Color       *string   `json:"color,omitempty" gorm:"size:64"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	SongIDs     []string  `json:"songIds" gorm:"serializer:json"`
	OwnerUID    *string   `json:"ownerUid,omitempty" gorm:"size:36;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// BeforeCreate assigns the document id. Callers never choose it.
func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	p.ID = uuid.NewString()
	return nil
}

// PlaylistDetail combines a playlist with its ordered tracks.
type PlaylistDetail struct {
	Playlist
	TrackCount int             `json:"trackCount"`
	Tracks     []*IndexedTrack `json:"tracks"`
}

// IndexedTrack is a track with its 1-based display position.
type IndexedTrack struct {
	*Track
	Index int `json:"index"`
}

// PlaylistSummary is the display metadata shown on playlist cards.
type PlaylistSummary struct {
	Title       string  `json:"title"`
	Image       string  `json:"image"`
	TracksCount int     `json:"tracksCount"`
	Color       *string `json:"color,omitempty"`
}

// Summary returns the card metadata of p.
func (p *Playlist) Summary() PlaylistSummary {
	return PlaylistSummary{
		Title:       p.Title,
		Image:       p.Image,
		TracksCount: p.TracksCount,
		Color:       p.Color,
	}
}
