// Package sendlog exposes the send audit log over HTTP.
package sendlog

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vkblast/vkblast/core/dispatch/sendlog"
)

// NewHandler returns an HTTP handler serving send records via
// GET /api/sendlog. Requests must carry "Bearer <token>" in the
// Authorization header when token is non-empty.
func NewHandler(store sendlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := sendlog.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.RecipientID = r.URL.Query().Get("recipient_id")
		q.OnlyFailed = r.URL.Query().Get("failed") == "true"

		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
