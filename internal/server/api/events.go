package api

import (
	"net/http"
	"strconv"

	"github.com/saheli56/Temple-Run/internal/store"
)

// EventsHandler serves the recorded action event history.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type listEventsResponse struct {
	Events []store.Event `json:"events"`
}

// ServeHTTP handles GET /api/events. Query parameters: limit caps the
// result size, session filters to one controller run.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		events []store.Event
		err    error
	)

	if session := r.URL.Query().Get("session"); session != "" {
		events, err = h.store.Events().BySession(session)
	} else {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, perr := strconv.Atoi(raw)
			if perr != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = parsed
		}
		events, err = h.store.Events().Recent(limit)
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	if events == nil {
		events = []store.Event{}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}
