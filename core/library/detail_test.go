package library

import (
	"context"
	"errors"
	"testing"

	"KPlayer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlaylistDetail_NotFoundIsDistinctFromFailure(t *testing.T) {
	missing := &MockPlaylistStore{}
	broken := &MockPlaylistStore{
		GetPlaylistByIDFunc: func(ctx context.Context, id string) (*model.Playlist, error) {
			return nil, errors.New("deadline exceeded")
		},
	}
	gateway := NewGateway(&MockPresigner{})

	notFound := NewDetailLoader(missing, gateway).GetPlaylistDetail(context.Background(), "missing-id")
	failed := NewDetailLoader(broken, gateway).GetPlaylistDetail(context.Background(), "missing-id")

	assert.True(t, notFound.IsNotFound())
	assert.NoError(t, notFound.Err())
	assert.True(t, failed.IsFailure())
	assert.EqualError(t, failed.Err(), "deadline exceeded")
	assert.NotEqual(t, notFound.State(), failed.State())
}

func TestGetPlaylistDetail_IndexesTracks(t *testing.T) {
	one, two := 1, 2
	store := &MockPlaylistStore{
		GetPlaylistByIDFunc: func(ctx context.Context, id string) (*model.Playlist, error) {
			return &model.Playlist{ID: id, Title: "Mix", Image: "covers/mix.jpg", TracksCount: 7}, nil
		},
		GetPlaylistTracksFunc: func(ctx context.Context, playlistID string) ([]*model.Track, error) {
			return []*model.Track{
				{ID: "t1", Title: "Intro", Order: &one},
				{ID: "t2", Title: "Outro", Order: &two},
			}, nil
		},
	}

	res := NewDetailLoader(store, NewGateway(&MockPresigner{})).GetPlaylistDetail(context.Background(), "p1")
	detail, ok := res.Data()
	require.True(t, ok)

	assert.Equal(t, "https://blobs.test/covers/mix.jpg", detail.Image)
	assert.Equal(t, 2, detail.TrackCount, "derived from tracks when present")
	require.Len(t, detail.Tracks, 2)
	assert.Equal(t, 1, detail.Tracks[0].Index)
	assert.Equal(t, "t1", detail.Tracks[0].ID)
	assert.Equal(t, 2, detail.Tracks[1].Index)
}

func TestGetPlaylistDetail_NoTracksUsesStoredCount(t *testing.T) {
	store := &MockPlaylistStore{
		GetPlaylistByIDFunc: func(ctx context.Context, id string) (*model.Playlist, error) {
			return &model.Playlist{ID: id, Title: "Fresh", TracksCount: 3}, nil
		},
	}

	res := NewDetailLoader(store, NewGateway(&MockPresigner{})).GetPlaylistDetail(context.Background(), "p1")
	detail, ok := res.Data()
	require.True(t, ok)
	assert.Equal(t, 3, detail.TrackCount)
	assert.Empty(t, detail.Tracks)
}

func TestGetPlaylistDetail_TrackFetchFails(t *testing.T) {
	store := &MockPlaylistStore{
		GetPlaylistByIDFunc: func(ctx context.Context, id string) (*model.Playlist, error) {
			return &model.Playlist{ID: id}, nil
		},
		GetPlaylistTracksFunc: func(ctx context.Context, playlistID string) ([]*model.Track, error) {
			return nil, errors.New("permission denied")
		},
	}

	res := NewDetailLoader(store, NewGateway(&MockPresigner{})).GetPlaylistDetail(context.Background(), "p1")
	assert.True(t, res.IsFailure())
	assert.ErrorContains(t, res.Err(), "permission denied")
}
