package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Song is an uploaded audio file that can be added to playlists.
type Song struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:255;not null;index"`
	Artist      string    `json:"artist" gorm:"size:255;not null"`
	URL         string    `json:"url" gorm:"size:2048"`
	Collection  *string   `json:"collection" gorm:"size:255"` // null when no album was given
	FileName    string    `json:"fileName" gorm:"size:512"`
	StoragePath string    `json:"storagePath" gorm:"size:1024"`
	UploaderUID *string   `json:"uploaderUid,omitempty" gorm:"size:36"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (s *Song) BeforeCreate(tx *gorm.DB) error {
	s.ID = uuid.NewString()
	return nil
}
