package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusakalaAPI/internal/backend"
	"nusakalaAPI/internal/province"
	"nusakalaAPI/internal/types/community"
	"nusakalaAPI/services"
)

type memoryCommunity struct {
	mu       sync.Mutex
	posts    map[string]*community.Post
	comments map[string][]*community.Comment
}

func newMemoryCommunity() *memoryCommunity {
	return &memoryCommunity{
		posts:    make(map[string]*community.Post),
		comments: make(map[string][]*community.Comment),
	}
}

func (m *memoryCommunity) InsertPost(_ context.Context, p *community.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	m.posts[p.ID] = p
	return nil
}

func (m *memoryCommunity) Feed(_ context.Context, viewerID string, q community.FeedQuery) ([]*community.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*community.Post
	for _, p := range m.posts {
		if p.ValidationStatus != string(backend.StatusApproved) && p.AuthorID != viewerID {
			continue
		}
		if q.Province != "" && (p.Province == nil || *p.Province != q.Province) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryCommunity) GetPost(_ context.Context, postID, _ string) (*community.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, services.ErrNotFound
	}
	return p, nil
}

func (m *memoryCommunity) DeletePost(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, postID)
	return nil
}

func (m *memoryCommunity) ToggleLike(_ context.Context, postID, _ string) (*community.LikeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, services.ErrNotFound
	}
	p.Likes++
	return &community.LikeResult{Liked: true, Likes: p.Likes}, nil
}

func (m *memoryCommunity) InsertComment(_ context.Context, c *community.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = time.Now()
	m.comments[c.PostID] = append(m.comments[c.PostID], c)
	return nil
}

func (m *memoryCommunity) Comments(_ context.Context, postID string) ([]*community.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments[postID], nil
}

type memoryImages struct {
	mu   sync.Mutex
	keys []string
}

func (m *memoryImages) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryImages) Delete(context.Context, string) error { return nil }

type verdict backend.ValidationStatus

func (v verdict) ValidateContent(context.Context, string, string) (*backend.Validation, error) {
	return &backend.Validation{Status: backend.ValidationStatus(v), Reason: "not allowed"}, nil
}

func newTestCommunityHandler(v verdict) (*CommunityHandler, *memoryImages) {
	images := &memoryImages{}
	svc := services.NewCommunityService(newMemoryCommunity(), images, v, province.DefaultCatalog(), nil)
	return NewCommunityHandler(svc), images
}

func createPostJSON(h *CommunityHandler, clerkID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/community/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.CreatePost(rr, asUser(req, clerkID))
	return rr
}

func TestCommunityHandler_CreateAndFeed(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusApproved))

	rr := createPostJSON(h, "user_a", `{"content": "Festival Danau Toba tahun ini ramai!", "province": "Sumatera Utara"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var post community.Post
	decodeBody(t, rr, &post)
	require.NotNil(t, post.Province)
	assert.Equal(t, "sumatera-utara", *post.Province)

	rr = httptest.NewRecorder()
	h.Feed(rr, httptest.NewRequest(http.MethodGet, "/api/v1/community/posts?province=sumatera-utara", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var feed []community.Post
	decodeBody(t, rr, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)

	rr = httptest.NewRecorder()
	h.Feed(rr, httptest.NewRequest(http.MethodGet, "/api/v1/community/posts?province=bali", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Feed(rr, httptest.NewRequest(http.MethodGet, "/api/v1/community/posts?before=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCommunityHandler_CreateMultipartWithImage(t *testing.T) {
	h, images := newTestCommunityHandler(verdict(backend.StatusApproved))

	body, ct := multipartImage(t, "image", "pura.png", pngBytes, map[string]string{
		"content":  "Pura Ulun Danu pagi ini",
		"province": "bali",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/community/posts", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.CreatePost(rr, asUser(req, "user_a"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var post community.Post
	decodeBody(t, rr, &post)
	require.NotNil(t, post.ImageURL)
	require.Len(t, images.keys, 1)
	assert.Equal(t, "https://cdn.example.com/"+images.keys[0], *post.ImageURL)
	assert.True(t, strings.HasSuffix(images.keys[0], ".png"))
}

func TestCommunityHandler_RejectedContent(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusRejected))

	rr := createPostJSON(h, "user_a", `{"content": "spam spam spam"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "not allowed", errorMessage(t, rr))
}

func TestCommunityHandler_DeleteOnlyByAuthor(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusApproved))

	rr := createPostJSON(h, "user_a", `{"content": "Rendang terenak di Padang"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var post community.Post
	decodeBody(t, rr, &post)

	del := func(clerkID string) *httptest.ResponseRecorder {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/v1/community/posts/"+post.ID, nil),
			map[string]string{"id": post.ID})
		rr := httptest.NewRecorder()
		h.DeletePost(rr, asUser(req, clerkID))
		return rr
	}

	assert.Equal(t, http.StatusForbidden, del("user_b").Code)
	assert.Equal(t, http.StatusOK, del("user_a").Code)
	assert.Equal(t, http.StatusNotFound, del("user_a").Code)
}

func TestCommunityHandler_LikeAndComment(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusApproved))

	rr := createPostJSON(h, "user_a", `{"content": "Wayang kulit semalam suntuk"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var post community.Post
	decodeBody(t, rr, &post)
	vars := map[string]string{"id": post.ID}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/v1/community/posts/"+post.ID+"/like", nil), vars)
	rr = httptest.NewRecorder()
	h.ToggleLike(rr, asUser(req, "user_b"))
	require.Equal(t, http.StatusOK, rr.Code)

	var like community.LikeResult
	decodeBody(t, rr, &like)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.Likes)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/v1/community/posts/"+post.ID+"/comments",
		strings.NewReader(`{"content": "Dalangnya luar biasa"}`)), vars)
	rr = httptest.NewRecorder()
	h.AddComment(rr, asUser(req, "user_b"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/community/posts/"+post.ID+"/comments", nil), vars)
	rr = httptest.NewRecorder()
	h.Comments(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var comments []community.Comment
	decodeBody(t, rr, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Dalangnya luar biasa", comments[0].Content)
}

func TestCommunityHandler_SubscribeUnknownProvince(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusApproved))

	rr := httptest.NewRecorder()
	h.Subscribe(rr, httptest.NewRequest(http.MethodGet, "/api/v1/community/ws?province=atlantis", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCommunityHandler_PendingPostHiddenFromOthers(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusPendingReview))

	rr := createPostJSON(h, "user_a", `{"content": "Sate Maranggi Purwakarta"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var post community.Post
	decodeBody(t, rr, &post)
	vars := map[string]string{"id": post.ID}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/v1/community/posts/"+post.ID+"/like", nil), vars)
	rr = httptest.NewRecorder()
	h.ToggleLike(rr, asUser(req, "user_b"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/v1/community/posts/"+post.ID+"/comments",
		strings.NewReader(`{"content": "Mantap"}`)), vars)
	rr = httptest.NewRecorder()
	h.AddComment(rr, asUser(req, "user_b"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/community/posts/"+post.ID+"/comments", nil), vars)
	rr = httptest.NewRecorder()
	h.Comments(rr, asUser(req, "user_a"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCommunityHandler_MalformedPostID(t *testing.T) {
	h, _ := newTestCommunityHandler(verdict(backend.StatusApproved))
	vars := map[string]string{"id": "abc"}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/community/posts/abc/comments", nil), vars)
	rr := httptest.NewRecorder()
	h.Comments(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/v1/community/posts/abc", nil), vars)
	rr = httptest.NewRecorder()
	h.DeletePost(rr, asUser(req, "user_a"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
