package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nusakalaAPI/internal/types/event"
	"nusakalaAPI/middleware"
	"nusakalaAPI/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

func parseDateParam(r *http.Request, key string) (*time.Time, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, true
	}
	return nil, false
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	from, ok := parseDateParam(r, "from")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "from must be a date (YYYY-MM-DD) or RFC 3339 time")
		return
	}
	to, ok := parseDateParam(r, "to")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "to must be a date (YYYY-MM-DD) or RFC 3339 time")
		return
	}

	q := r.URL.Query()
	page, err := h.eventService.ListEvents(ctx, event.Filter{
		Province: q.Get("province"),
		Category: q.Get("category"),
		From:     from,
		To:       to,
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 0),
	})
	if err != nil {
		respondWithServiceError(w, "ListEvents", err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ev, err := h.eventService.GetEvent(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "GetEvent", err)
		return
	}

	respondWithJSON(w, http.StatusOK, ev)
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req event.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := h.eventService.CreateEvent(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateEvent", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ev)
}

func (h *EventHandler) GetEventQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	qr, err := h.eventService.ShareQR(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "GetEventQR", err)
		return
	}

	respondWithJSON(w, http.StatusOK, qr)
}
