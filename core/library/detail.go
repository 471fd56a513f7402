package library

import (
	"context"
	"fmt"

	"KPlayer/logger"
	"KPlayer/model"
)

// DetailLoader loads one playlist with its tracks.
type DetailLoader struct {
	store   PlaylistReader
	gateway *Gateway
}

func NewDetailLoader(store PlaylistReader, gateway *Gateway) *DetailLoader {
	return &DetailLoader{store: store, gateway: gateway}
}

// GetPlaylistDetail returns NotFound when no playlist has id and Failure when a
// fetch fails, so callers can tell "not found" from "try again later".
func (d *DetailLoader) GetPlaylistDetail(ctx context.Context, id string) Result[*model.PlaylistDetail] {
	p, err := d.store.GetPlaylistByID(ctx, id)
	if err != nil {
		logger.Error("failed to fetch playlist", logger.String("playlistId", id), logger.ErrorField(err))
		return Failure[*model.PlaylistDetail](err)
	}
	if p == nil {
		return NotFound[*model.PlaylistDetail]()
	}

	p.Image = d.gateway.ResolveImage(ctx, p.Image)

	tracks, err := d.store.GetPlaylistTracks(ctx, id)
	if err != nil {
		logger.Error("failed to fetch playlist tracks", logger.String("playlistId", id), logger.ErrorField(err))
		return Failure[*model.PlaylistDetail](fmt.Errorf("tracks of %s: %w", id, err))
	}

	detail := &model.PlaylistDetail{
		Playlist:   *p,
		TrackCount: p.TracksCount,
		Tracks:     make([]*model.IndexedTrack, len(tracks)),
	}
	for i, t := range tracks {
		detail.Tracks[i] = &model.IndexedTrack{Track: t, Index: i + 1}
	}
	if len(tracks) > 0 {
		detail.TrackCount = len(tracks)
	}
	return Success(detail)
}
