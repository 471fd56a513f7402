package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"KPlayer/logger"
	"KPlayer/model"
)

var (
	ErrSongFileRequired = errors.New("song file is required")
	ErrSongNameRequired = errors.New("song name is required")
	ErrArtistRequired   = errors.New("artist is required")
)

// BlobUploader writes an object to the blob store.
type BlobUploader interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error
}

// SongWriter is the write side of the songs collection.
type SongWriter interface {
	CreateSong(ctx context.Context, song *model.Song) (string, error)
}

// SongUpload is one song submitted from the upload form.
type SongUpload struct {
	File        io.Reader
	FileName    string
	Size        int64
	ContentType string
	Name        string
	Artist      string
	Collection  string
	UploaderUID string
}

// SongUploader stores an audio file and records it in the songs collection.
type SongUploader struct {
	blobs   BlobUploader
	store   SongWriter
	gateway *Gateway
}

func NewSongUploader(blobs BlobUploader, store SongWriter, gateway *Gateway) *SongUploader {
	return &SongUploader{blobs: blobs, store: store, gateway: gateway}
}

// SongObjectPath is where an uploaded song file lives in the bucket. Artist
// and file name each become exactly one path segment under songs/.
func SongObjectPath(artist, fileName string) string {
	return "songs/" + pathSegment(artist) + "/" + pathSegment(path.Base(fileName))
}

var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_")

// pathSegment turns s into a single object path segment that cannot climb out
// of its parent.
func pathSegment(s string) string {
	seg := segmentReplacer.Replace(strings.TrimSpace(s))
	switch seg {
	case "", ".", "..":
		return "_"
	}
	return seg
}

func (in SongUpload) validate() error {
	if in.File == nil || strings.TrimSpace(in.FileName) == "" {
		return ErrSongFileRequired
	}
	if strings.TrimSpace(in.Name) == "" {
		return ErrSongNameRequired
	}
	if strings.TrimSpace(in.Artist) == "" {
		return ErrArtistRequired
	}
	return nil
}

// Upload validates the form, writes the file, then records the song. A failed
// blob write aborts before anything is recorded.
func (u *SongUploader) Upload(ctx context.Context, in SongUpload) (*model.Song, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	artist := strings.TrimSpace(in.Artist)
	objectPath := SongObjectPath(artist, in.FileName)
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := u.blobs.Upload(ctx, objectPath, in.File, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("upload song file: %w", err)
	}

	song := &model.Song{
		Name:        strings.TrimSpace(in.Name),
		Artist:      artist,
		URL:         u.gateway.ResolveImage(ctx, objectPath),
		FileName:    path.Base(in.FileName),
		StoragePath: objectPath,
	}
	if c := strings.TrimSpace(in.Collection); c != "" {
		song.Collection = &c
	}
	if in.UploaderUID != "" {
		uid := in.UploaderUID
		song.UploaderUID = &uid
	}

	id, err := u.store.CreateSong(ctx, song)
	if err != nil {
		return nil, fmt.Errorf("record song: %w", err)
	}
	song.ID = id

	logger.Info("song uploaded",
		logger.String("songId", id),
		logger.String("path", objectPath),
		logger.Int64("size", in.Size))
	return song, nil
}
