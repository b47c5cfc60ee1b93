package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/jbarakanov/videohost/internal/common"
)

// CreateVideo handles the multipart upload. The acting identity is the
// token-resolved user; a path user id that names anyone else is rejected
// before any bytes are stored.
func (s *Server) CreateVideo(w http.ResponseWriter, r *http.Request) {
	pathUserID, ok := pathID(r, "user_id")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	actor := currentUser(r)
	if actor.ID != pathUserID {
		writeError(w, common.ErrForbidden)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	description := r.URL.Query().Get("desc")

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	media, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "error reading upload", http.StatusBadRequest)
		return
	}

	video, err := s.videos.Create(r.Context(), actor.ID, title, description, media)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

func (s *Server) ListVideos(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r, 0, 100)
	search := r.URL.Query().Get("search")

	videos, err := s.videos.ListFiltered(r.Context(), search, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "vid_id")
	if !ok {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return
	}

	video, err := s.videos.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// DeleteVideo removes a video on behalf of the token-resolved user. The
// path user id must name that same user; ownership itself is enforced by
// the catalog.
func (s *Server) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	pathUserID, ok := pathID(r, "user_id")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	videoID, ok := pathID(r, "vid_id")
	if !ok {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return
	}

	actor := currentUser(r)
	if actor.ID != pathUserID {
		writeError(w, common.ErrForbidden)
		return
	}

	video, err := s.videos.Delete(r.Context(), videoID, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}
