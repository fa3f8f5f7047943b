package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"nusakalaAPI/internal/backend"
	"nusakalaAPI/internal/province"
	"nusakalaAPI/internal/types/event"
)

const (
	defaultEventPageSize = 20
	maxEventPageSize     = 100
)

// Upstream is the authenticated REST backend.
type Upstream interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// ContentValidator classifies user submitted text.
type ContentValidator interface {
	ValidateContent(ctx context.Context, kind, text string) (*backend.Validation, error)
}

type EventService struct {
	upstream     Upstream
	validator    ContentValidator
	provinces    *province.Catalog
	shareBaseURL string
}

func NewEventService(upstream Upstream, validator ContentValidator, provinces *province.Catalog, shareBaseURL string) *EventService {
	return &EventService{
		upstream:     upstream,
		validator:    validator,
		provinces:    provinces,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
	}
}

func (s *EventService) ListEvents(ctx context.Context, f event.Filter) (*event.Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultEventPageSize
	}
	if f.Limit > maxEventPageSize {
		f.Limit = maxEventPageSize
	}

	q := url.Values{}
	if f.Province != "" {
		p, ok := s.provinces.Lookup(f.Province)
		if !ok {
			return nil, fmt.Errorf("%w: unknown province %q", ErrInvalidInput, f.Province)
		}
		q.Set("province", p.Name)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.From != nil {
		q.Set("from", f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		q.Set("to", f.To.Format(time.RFC3339))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))

	page := &event.Page{}
	if err := s.upstream.Do(ctx, http.MethodGet, "/events?"+q.Encode(), nil, page); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if page.Events == nil {
		page.Events = []*event.Event{}
	}
	page.Page = f.Page
	page.Limit = f.Limit
	return page, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	ev := &event.Event{}
	err := s.upstream.Do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, ev)
	if err != nil {
		if backend.StatusCode(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

func validateEvent(req *event.CreateEventRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)

	switch {
	case req.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case len(req.Title) > 200:
		return fmt.Errorf("%w: title must be at most 200 characters", ErrInvalidInput)
	case req.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case req.Province == "":
		return fmt.Errorf("%w: province is required", ErrInvalidInput)
	case req.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalidInput)
	case req.StartDate.IsZero():
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	case req.EndDate != nil && req.EndDate.Before(req.StartDate):
		return fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidInput)
	}
	return nil
}

type createEventPayload struct {
	*event.CreateEventRequest
	OrganizerID      string `json:"organizerId"`
	ValidationStatus string `json:"validationStatus"`
	ValidationReason string `json:"validationReason,omitempty"`
}

// CreateEvent validates and moderates the submission before creating it
// upstream. Rejected content is never sent.
func (s *EventService) CreateEvent(ctx context.Context, userID string, req *event.CreateEventRequest) (*event.Event, error) {
	if err := validateEvent(req); err != nil {
		return nil, err
	}

	p, ok := s.provinces.Lookup(req.Province)
	if !ok {
		return nil, fmt.Errorf("%w: unknown province %q", ErrInvalidInput, req.Province)
	}
	req.Province = p.Name

	verdict, err := s.validator.ValidateContent(ctx, "event", req.Title+"\n\n"+req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to validate event: %w", err)
	}
	if verdict.Status == backend.StatusRejected {
		return nil, fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}

	payload := createEventPayload{
		CreateEventRequest: req,
		OrganizerID:        userID,
		ValidationStatus:   string(verdict.Status),
		ValidationReason:   verdict.Reason,
	}

	created := &event.Event{}
	if err := s.upstream.Do(ctx, http.MethodPost, "/events", payload, created); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if created.ValidationStatus == "" {
		created.ValidationStatus = string(verdict.Status)
	}
	return created, nil
}

type ShareQR struct {
	URL   string `json:"url"`
	Image string `json:"image"`
}

// ShareQR renders a PNG QR code pointing at the public event page.
func (s *EventService) ShareQR(ctx context.Context, id string) (*ShareQR, error) {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/events/%s", s.shareBaseURL, url.PathEscape(id))
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &ShareQR{
		URL:   link,
		Image: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}
