package api

import (
	"net/http"
	"strconv"

	"github.com/hearthwise/hearth-core/internal/activity"
)

// handleListLogs returns the caller's activity log oldest-first,
// optionally narrowed to one device with ?device_id= and paginated with
// ?limit= and ?offset=.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	filter := activity.Filter{
		DeviceID: r.URL.Query().Get("device_id"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	entries, err := s.activities.ListByOwner(r.Context(), userIDFrom(r), filter)
	if err != nil {
		s.logger.Error("listing activity log", "error", err)
		writeInternalError(w, "could not list activity log")
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
