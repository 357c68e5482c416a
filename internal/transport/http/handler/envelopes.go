package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/siuupriyanshu/auth-core/internal/domain"
)

// Envelope is the generic response wrapper. Every response carries the
// success flag so clients can branch without inspecting status codes.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthData carries login responses.
type AuthData struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// UserPage carries admin user listings.
type UserPage struct {
	Users      []domain.User `json:"users"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Success: false, Message: msg})
}

// httpError maps a domain error onto an HTTP status. The kind switch is
// exhaustive over domain.ErrorKind; non-domain errors come out as
// KindInternal and are rendered as a generic 500 so nothing internal leaks.
func httpError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case domain.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, err.Error())
	case domain.KindForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	case domain.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case domain.KindInvalidToken:
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.KindInternal:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
