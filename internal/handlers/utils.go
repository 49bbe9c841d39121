package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/types"
)

type contextKey string

const contextUserKey contextKey = "user"

const (
	defaultLimit    = 100
	maxLimit        = 100
	maxUploadBytes  = 32 << 20
	maxMultipartMem = 16 << 20
)

// userFromContext returns the identity stored by the auth middleware.
func userFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok || user.ID == "" {
		return types.User{}, errors.New("missing identity")
	}
	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple informational payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeServiceError maps service errors to HTTP status codes and falls
// back to a 500 with the given message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrTokenRevoked),
		errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUserBlocked),
		errors.Is(err, services.ErrInsufficientPrivilege),
		errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrModelLimitReached):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUserInactive),
		errors.Is(err, services.ErrAlreadyBlocked),
		errors.Is(err, services.ErrNotBlocked),
		errors.Is(err, services.ErrCannotBlockAdmin),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidVerification),
		errors.Is(err, services.ErrInvalidResetToken),
		errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrUnsupportedFile):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// parseSkipLimit reads the skip/limit query parameters used by the list
// endpoints.
func parseSkipLimit(r *http.Request) (skip, limit int, err error) {
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("skip")); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, errors.New("invalid skip")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return skip, limit, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
