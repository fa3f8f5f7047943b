package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusakalaAPI/internal/backend"
	"nusakalaAPI/internal/province"
	"nusakalaAPI/internal/types/event"
	"nusakalaAPI/services"
)

// cannedUpstream serves fixed JSON per path and remembers the last path.
type cannedUpstream struct {
	bodies   map[string]string
	lastPath string
}

func (c *cannedUpstream) Do(_ context.Context, _ string, path string, _, out any) error {
	c.lastPath = path
	route, _, _ := strings.Cut(path, "?")
	body, ok := c.bodies[route]
	if !ok {
		return &backend.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
	}
	return json.Unmarshal([]byte(body), out)
}

func newTestEventHandler(up *cannedUpstream) *EventHandler {
	svc := services.NewEventService(up, verdict(backend.StatusApproved), province.DefaultCatalog(), "https://nusakala.id")
	return NewEventHandler(svc)
}

func TestEventHandler_ListPassesFilters(t *testing.T) {
	up := &cannedUpstream{bodies: map[string]string{
		"/events": `{"events": [{"id": "ev1", "title": "Pesta Kesenian Bali"}], "total": 1}`,
	}}
	h := newTestEventHandler(up)

	rr := httptest.NewRecorder()
	h.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/api/v1/events?province=bali&from=2026-06-01&page=2", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page event.Page
	decodeBody(t, rr, &page)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Pesta Kesenian Bali", page.Events[0].Title)
	assert.Contains(t, up.lastPath, "province=Bali")
	assert.Contains(t, up.lastPath, "page=2")
}

func TestEventHandler_ListRejectsBadDates(t *testing.T) {
	h := newTestEventHandler(&cannedUpstream{})

	rr := httptest.NewRecorder()
	h.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/api/v1/events?to=next-week", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEventHandler_GetAndQR(t *testing.T) {
	up := &cannedUpstream{bodies: map[string]string{
		"/events/ev1": `{"id": "ev1", "title": "Festival Lembah Baliem"}`,
	}}
	h := newTestEventHandler(up)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/events/ev1/qr", nil), map[string]string{"id": "ev1"})
	rr := httptest.NewRecorder()
	h.GetEventQR(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var qr services.ShareQR
	decodeBody(t, rr, &qr)
	assert.Equal(t, "https://nusakala.id/events/ev1", qr.URL)
	assert.True(t, strings.HasPrefix(qr.Image, "data:image/png;base64,"))

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/events/missing", nil), map[string]string{"id": "missing"})
	rr = httptest.NewRecorder()
	h.GetEvent(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventHandler_CreateRequiresAuth(t *testing.T) {
	h := newTestEventHandler(&cannedUpstream{})

	rr := httptest.NewRecorder()
	h.CreateEvent(rr, httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
