package library

import (
	"context"

	"KPlayer/logger"
	"KPlayer/model"

	"golang.org/x/sync/errgroup"
)

// SongReader lists the songs collection ordered by name.
type SongReader interface {
	ListSongsByName(ctx context.Context) ([]*model.Song, error)
}

// SongCatalog loads the songs a playlist can be composed from.
type SongCatalog struct {
	store   SongReader
	gateway *Gateway
}

func NewSongCatalog(store SongReader, gateway *Gateway) *SongCatalog {
	return &SongCatalog{store: store, gateway: gateway}
}

// ListSongs returns songs by name ascending with playable URLs signed for this
// read. A failed query yields an empty list and an error notice; it never
// fails the caller.
func (c *SongCatalog) ListSongs(ctx context.Context) ([]*model.Song, *Notice) {
	songs, err := c.store.ListSongsByName(ctx)
	if err != nil {
		logger.Error("failed to load songs", logger.ErrorField(err))
		return []*model.Song{}, &Notice{
			Level:   NoticeError,
			Title:   "Songs failed to load",
			Message: err.Error(),
		}
	}

	resolved := make([]*model.Song, len(songs))
	var g errgroup.Group
	for i, s := range songs {
		i, s := i, s
		g.Go(func() error {
			cp := *s
			// the stored URL is a presigned link that expires
			if cp.StoragePath != "" {
				cp.URL = c.gateway.ResolveImage(ctx, cp.StoragePath)
			}
			resolved[i] = &cp
			return nil
		})
	}
	_ = g.Wait()

	return resolved, nil
}
