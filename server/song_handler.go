package server

import (
	"errors"
	"net/http"

	"KPlayer/core/library"
	"KPlayer/logger"
	"KPlayer/model"
)

const maxUploadSize = 100 << 20 // 100MB

// SongsResponse is the song catalog with the notice raised when it failed to load.
type SongsResponse struct {
	Songs  []*model.Song   `json:"songs"`
	Notice *library.Notice `json:"notice,omitempty"`
}

// ListSongsHandler returns every song ordered by name.
func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, notice := h.catalog.ListSongs(r.Context())
	writeJSON(w, http.StatusOK, SongsResponse{Songs: songs, Notice: notice})
}

// UploadSongHandler stores a multipart song upload.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := GetIdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	in := library.SongUpload{
		Name:        r.FormValue("name"),
		Artist:      r.FormValue("artist"),
		Collection:  r.FormValue("collection"),
		UploaderUID: identity.UID,
	}
	file, header, err := r.FormFile("songFile")
	if err == nil {
		defer file.Close()
		in.File = file
		in.FileName = header.Filename
		in.Size = header.Size
		in.ContentType = header.Header.Get("Content-Type")
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "Invalid song file")
		return
	}

	song, err := h.uploader.Upload(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrSongFileRequired),
			errors.Is(err, library.ErrSongNameRequired),
			errors.Is(err, library.ErrArtistRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error("song upload failed", logger.String("uid", identity.UID), logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, song)
}
