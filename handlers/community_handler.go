package handlers

import (
	"context"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"nusakalaAPI/internal/types/community"
	"nusakalaAPI/middleware"
	"nusakalaAPI/services"
)

const maxPostImageBytes = 5 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type CommunityHandler struct {
	communityService *services.CommunityService
}

func NewCommunityHandler(communityService *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
	}
}

// Feed is public; a signed in viewer also sees their own pending posts.
func (h *CommunityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	viewerID, _ := middleware.GetClerkID(ctx)

	q := community.FeedQuery{
		Province: r.URL.Query().Get("province"),
		Limit:    queryInt(r, "limit", 0),
	}
	if v := r.URL.Query().Get("before"); v != "" {
		before, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
			return
		}
		q.Before = &before
	}

	posts, err := h.communityService.Feed(ctx, viewerID, q)
	if err != nil {
		respondWithServiceError(w, "Feed", err)
		return
	}
	if posts == nil {
		posts = []*community.Post{}
	}

	respondWithJSON(w, http.StatusOK, posts)
}

// CreatePost accepts JSON, or multipart with content, province and an
// optional image field.
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req community.CreatePostRequest
	var image *community.Image

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		r.Body = http.MaxBytesReader(w, r.Body, maxPostImageBytes+1<<20)
		if err := r.ParseMultipartForm(maxPostImageBytes); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		req.Content = r.FormValue("content")
		req.Province = r.FormValue("province")

		data, filename, contentType, err := readFormFile(r, "image", maxPostImageBytes)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case errors.Is(err, errFileTooLarge):
			respondWithError(w, http.StatusRequestEntityTooLarge, "Image must be at most 5MB")
			return
		case err != nil:
			respondWithError(w, http.StatusBadRequest, "Invalid image upload")
			return
		default:
			image = &community.Image{Data: data, Filename: filename, ContentType: contentType}
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.communityService.CreatePost(ctx, clerkID, &req, image)
	if err != nil {
		respondWithServiceError(w, "CreatePost", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, post)
}

func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.communityService.DeletePost(ctx, clerkID, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, "DeletePost", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CommunityHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.communityService.ToggleLike(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "ToggleLike", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *CommunityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.communityService.AddComment(ctx, clerkID, mux.Vars(r)["id"], req.Content)
	if err != nil {
		respondWithServiceError(w, "AddComment", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, comment)
}

func (h *CommunityHandler) Comments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	viewerID, _ := middleware.GetClerkID(ctx)
	comments, err := h.communityService.Comments(ctx, viewerID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "Comments", err)
		return
	}
	if comments == nil {
		comments = []*community.Comment{}
	}

	respondWithJSON(w, http.StatusOK, comments)
}

// Subscribe upgrades to a websocket that streams feed events, optionally
// filtered by ?province.
func (h *CommunityHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	province, err := h.communityService.FeedProvince(r.URL.Query().Get("province"))
	if err != nil {
		respondWithServiceError(w, "Subscribe", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Subscribe: websocket upgrade failed: %v", err)
		return
	}

	if err := h.communityService.Subscribe(conn, province); err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "live feed unavailable"))
		conn.Close()
	}
}
