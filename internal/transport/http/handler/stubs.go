package handler

import "net/http"

// NotImplemented serves the endpoints the API surface reserves but does not
// implement yet: TOTP two-factor auth and GitHub OAuth.
func NotImplemented(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "not implemented")
}
