package handlers

import "net/http"

// Health always reports healthy; it does not probe dependencies.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
