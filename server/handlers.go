package server

import (
	"context"
	"encoding/json"
	"net/http"

	"KPlayer/config"
	"KPlayer/core/auth"
	"KPlayer/core/library"
	"KPlayer/logger"
	"KPlayer/repository"
)

// Authenticator is the identity provider the handlers sign users in with.
type Authenticator interface {
	SignUp(ctx context.Context, name, email, password string) (*auth.Identity, error)
	SignIn(ctx context.Context, email, password string) (*auth.Identity, error)
	SignOut(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// BlobStore is the part of the object store the API uses.
type BlobStore interface {
	library.Presigner
	library.BlobUploader
}

// APIHandler serves the JSON API and the playlist dialog socket.
type APIHandler struct {
	auth      Authenticator
	playlists repository.PlaylistRepository
	tracks    repository.TrackRepository
	loader    *library.PlaylistLoader
	details   *library.DetailLoader
	catalog   *library.SongCatalog
	uploader  *library.SongUploader
	cfg       *config.Config
}

// NewAPIHandler wires the library components onto the given backends.
func NewAPIHandler(
	authn Authenticator,
	playlists repository.PlaylistRepository,
	tracks repository.TrackRepository,
	songs repository.SongRepository,
	blobs BlobStore,
	cfg *config.Config,
) *APIHandler {
	gateway := library.NewGateway(blobs)
	return &APIHandler{
		auth:      authn,
		playlists: playlists,
		tracks:    tracks,
		loader:    library.NewPlaylistLoader(playlists, gateway),
		details:   library.NewDetailLoader(playlists, gateway),
		catalog:   library.NewSongCatalog(songs, gateway),
		uploader:  library.NewSongUploader(blobs, songs, gateway),
		cfg:       cfg,
	}
}

// newCreationWorkflow builds a creation dialog owned by uid.
func (h *APIHandler) newCreationWorkflow(uid string, opts ...library.CreationOption) *library.CreationWorkflow {
	opts = append([]library.CreationOption{
		library.WithOwner(uid),
		library.WithPlaceholderCover(h.cfg.PlaceholderCover),
	}, opts...)
	return library.NewCreationWorkflow(h.catalog, h.playlists, opts...)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
