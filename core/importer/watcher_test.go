package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"KPlayer/core/library"
	"KPlayer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockUploader struct {
	UploadFunc func(ctx context.Context, in library.SongUpload) (*model.Song, error)

	mu    sync.Mutex
	calls []library.SongUpload
}

func (m *MockUploader) Upload(ctx context.Context, in library.SongUpload) (*model.Song, error) {
	if in.File != nil {
		_, _ = io.Copy(io.Discard, in.File)
	}
	m.mu.Lock()
	m.calls = append(m.calls, in)
	m.mu.Unlock()
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, in)
	}
	return &model.Song{ID: "song-" + in.Name, Name: in.Name, Artist: in.Artist}, nil
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name, artist, title string
	}{
		{"Miles Davis - So What.mp3", "Miles Davis", "So What"},
		{"untitled.flac", "", "untitled"},
		{"A - B - C.ogg", "A", "B - C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, title := ParseFileName(tt.name)
			assert.Equal(t, tt.artist, artist)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile("/x/a.MP3"))
	assert.True(t, IsAudioFile("b.flac"))
	assert.False(t, IsAudioFile("cover.jpg"))
	assert.False(t, IsAudioFile("noext"))
}

func TestWatcher_ImportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	uploader := &MockUploader{}
	w := NewWatcher(dir, uploader, Options{Artist: "Various", Settle: 40 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan Result, 4)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx, results) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Nina - Feeling Good.mp3"), []byte("ID3"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loose.wav"), []byte("RIFF"), 0644))

	got := map[string]Result{}
	for len(got) < 2 {
		select {
		case res := <-results:
			got[filepath.Base(res.Path)] = res
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out, got %d results", len(got))
		}
	}

	require.NoError(t, got["Nina - Feeling Good.mp3"].Err)
	assert.Equal(t, "Nina", got["Nina - Feeling Good.mp3"].Song.Artist)
	assert.Equal(t, "Feeling Good", got["Nina - Feeling Good.mp3"].Song.Name)
	assert.Equal(t, "Various", got["loose.wav"].Song.Artist)

	cancel()
	assert.NoError(t, <-errCh)

	uploader.mu.Lock()
	defer uploader.mu.Unlock()
	assert.Len(t, uploader.calls, 2)
	for _, c := range uploader.calls {
		assert.NotEmpty(t, c.ContentType)
	}
}

func TestWatcher_FailedImportReported(t *testing.T) {
	dir := t.TempDir()
	uploader := &MockUploader{
		UploadFunc: func(ctx context.Context, in library.SongUpload) (*model.Song, error) {
			return nil, errors.New("bucket offline")
		},
	}
	w := NewWatcher(dir, uploader, Options{Artist: "X", Settle: 40 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan Result, 1)
	go func() { _ = w.Run(ctx, results) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0644))

	select {
	case res := <-results:
		assert.ErrorContains(t, res.Err, "bucket offline")
	case <-time.After(3 * time.Second):
		t.Fatal("no result")
	}
}

func TestTickInterval(t *testing.T) {
	assert.Equal(t, 125*time.Millisecond, tickInterval(500*time.Millisecond))
	assert.Equal(t, time.Millisecond, tickInterval(3*time.Nanosecond))
	assert.Equal(t, time.Millisecond, tickInterval(time.Nanosecond))
}

func TestWatcher_TinySettleDoesNotPanic(t *testing.T) {
	w := NewWatcher(t.TempDir(), &MockUploader{}, Options{Settle: 2 * time.Nanosecond})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.Run(ctx, nil))
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), &MockUploader{}, Options{})
	assert.Error(t, w.Run(context.Background(), nil))
}
