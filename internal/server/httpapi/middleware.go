package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jbarakanov/videohost/internal/common"
	"github.com/jbarakanov/videohost/internal/server/models"
)

type contextKey string

const currentUserKey contextKey = "current_user"

// requireAuth resolves the bearer token to a user and stores it on the
// request context. No ambient session state: the token comes in with the
// request and the identity goes out through the context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, common.ErrUnauthenticated)
			return
		}

		token := strings.TrimPrefix(header, common.BearerPrefix)

		user, err := s.users.ResolveFromToken(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next(w, r.WithContext(ctx))
	}
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(currentUserKey).(*models.User)
	return user
}

// writeError maps the service error taxonomy onto HTTP statuses.
// Authentication failures carry the bearer challenge header.
func writeError(w http.ResponseWriter, err error) {
	var status int

	switch {
	case errors.Is(err, common.ErrEmailTaken),
		errors.Is(err, common.ErrUsernameTaken),
		errors.Is(err, common.ErrPhoneTaken):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrUserGone):
		w.Header().Set("WWW-Authenticate", "Bearer")
		status = http.StatusUnauthorized
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
