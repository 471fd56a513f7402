package cmd

import (
	"context"
	"time"

	"KPlayer/core/library"
	"KPlayer/db"
	"KPlayer/repository"
	"KPlayer/storage"

	"gorm.io/gorm"
)

// backends are the stores a CLI command works against.
type backends struct {
	db        *gorm.DB
	playlists repository.PlaylistRepository
	songs     repository.SongRepository
	tracks    repository.TrackRepository
	blobs     *storage.MinioStore
	gateway   *library.Gateway
}

func openBackends(ctx context.Context) (*backends, error) {
	gormDB, err := db.ConnectGormDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		db.CloseGormDB(gormDB)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	blobs, err := storage.NewMinioStore(ctx, cfg)
	if err != nil {
		db.CloseGormDB(gormDB)
		return nil, err
	}

	return &backends{
		db:        gormDB,
		playlists: repository.NewGormPlaylistRepository(gormDB),
		songs:     repository.NewGormSongRepository(gormDB),
		tracks:    repository.NewGormTrackRepository(gormDB),
		blobs:     blobs,
		gateway:   library.NewGateway(blobs),
	}, nil
}

func (b *backends) Close() {
	db.CloseGormDB(b.db)
}
