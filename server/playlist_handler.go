package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"KPlayer/core/library"
	"KPlayer/logger"
	"KPlayer/model"
	"KPlayer/repository"

	"github.com/gorilla/mux"
)

// CreatePlaylistRequest is the body of POST /api/playlists.
type CreatePlaylistRequest struct {
	Name    string   `json:"name"`
	SongIDs []string `json:"songIds"`
}

// CreatePlaylistResponse reports the created id and the notices raised on the way.
type CreatePlaylistResponse struct {
	ID      string           `json:"id,omitempty"`
	Error   string           `json:"error,omitempty"`
	Notices []library.Notice `json:"notices"`
}

// noticeBuffer collects the notices of one request.
type noticeBuffer struct {
	mu      sync.Mutex
	notices []library.Notice
}

func (b *noticeBuffer) Notify(n library.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

func (b *noticeBuffer) list() []library.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]library.Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

// ListPlaylistsHandler returns the playlist list as a tagged result.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	limit := h.cfg.PlaylistListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	res := h.loader.Load(r.Context(), limit)
	status := http.StatusOK
	if res.IsFailure() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// GetPlaylistHandler returns one playlist with its tracks.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	res := h.details.GetPlaylistDetail(r.Context(), id)
	switch res.State() {
	case library.StateNotFound:
		writeJSON(w, http.StatusNotFound, res)
	case library.StateFailure:
		writeJSON(w, http.StatusServiceUnavailable, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// CreatePlaylistHandler runs one pass of the creation dialog with the
// submitted name and selection.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := GetIdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notices := &noticeBuffer{}
	wf := h.newCreationWorkflow(identity.UID, library.WithNotifier(notices), library.WithoutSongCatalog())
	wf.Open(r.Context())
	if err := wf.SetName(req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	seen := make(map[string]bool, len(req.SongIDs))
	for _, id := range req.SongIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := wf.ToggleSong(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	id, err := wf.Submit(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, library.ErrNameRequired) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, CreatePlaylistResponse{Error: err.Error(), Notices: notices.list()})
		return
	}

	logger.Info("playlist created via API", logger.String("playlistId", id), logger.String("uid", identity.UID))
	writeJSON(w, http.StatusCreated, CreatePlaylistResponse{ID: id, Notices: notices.list()})
}

// AddTrackRequest is the body of POST /api/playlists/{id}/tracks.
type AddTrackRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration string `json:"duration"`
	Order    *int   `json:"order,omitempty"`
}

// AddTrackHandler appends a track to a playlist's track list.
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlistID := mux.Vars(r)["id"]

	var req AddTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Track title is required")
		return
	}

	track := &model.Track{
		Title:    strings.TrimSpace(req.Title),
		Artist:   req.Artist,
		Album:    req.Album,
		Duration: req.Duration,
		Order:    req.Order,
	}
	id, err := h.tracks.AddTrack(r.Context(), playlistID, track)
	if err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("failed to add track", logger.String("playlistId", playlistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add track")
		return
	}

	logger.Debug("track added", logger.String("playlistId", playlistID), logger.String("trackId", id))
	writeJSON(w, http.StatusCreated, track)
}
