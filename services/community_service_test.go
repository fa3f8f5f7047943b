package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nusakalaAPI/internal/backend"
	"nusakalaAPI/internal/province"
	"nusakalaAPI/internal/types/community"
)

type fakeCommunityStore struct {
	mu       sync.Mutex
	posts    map[string]*community.Post
	likes    map[string]map[string]bool
	comments map[string][]*community.Comment
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		posts:    make(map[string]*community.Post),
		likes:    make(map[string]map[string]bool),
		comments: make(map[string][]*community.Comment),
	}
}

func (f *fakeCommunityStore) InsertPost(_ context.Context, p *community.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.CreatedAt = time.Now()
	p.AuthorName = "penjelajah"
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakeCommunityStore) Feed(_ context.Context, _ string, q community.FeedQuery) ([]*community.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*community.Post{}
	for _, p := range f.posts {
		if q.Province != "" && (p.Province == nil || *p.Province != q.Province) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCommunityStore) GetPost(_ context.Context, postID, _ string) (*community.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCommunityStore) DeletePost(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, postID)
	return nil
}

func (f *fakeCommunityStore) ToggleLike(_ context.Context, postID, userID string) (*community.LikeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likes[postID] == nil {
		f.likes[postID] = map[string]bool{}
	}
	liked := !f.likes[postID][userID]
	if liked {
		f.likes[postID][userID] = true
	} else {
		delete(f.likes[postID], userID)
	}
	return &community.LikeResult{Liked: liked, Likes: len(f.likes[postID])}, nil
}

func (f *fakeCommunityStore) InsertComment(_ context.Context, c *community.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[c.PostID] = append(f.comments[c.PostID], c)
	return nil
}

func (f *fakeCommunityStore) Comments(_ context.Context, postID string) ([]*community.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*community.Comment{}, f.comments[postID]...), nil
}

type fakeImageStore struct {
	uploaded map[string][]byte
	deleted  []string
}

func (f *fakeImageStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[key] = data
	return "https://cdn.nusakala.id/" + key, nil
}

func (f *fakeImageStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func approve() *fakeValidator {
	return &fakeValidator{verdict: &backend.Validation{Status: backend.StatusApproved}}
}

func TestCreatePost_WithImage(t *testing.T) {
	store := newFakeCommunityStore()
	images := &fakeImageStore{}
	svc := NewCommunityService(store, images, approve(), province.DefaultCatalog(), nil)

	post, err := svc.CreatePost(context.Background(), "user_1",
		&community.CreatePostRequest{Content: "Sunset di Tanah Lot", Province: "Bali"},
		&community.Image{Data: pngHeader, Filename: "lot.png"})
	require.NoError(t, err)

	assert.Equal(t, "approved", post.ValidationStatus)
	require.NotNil(t, post.Province)
	assert.Equal(t, "bali", *post.Province)
	require.NotNil(t, post.ImageURL)
	assert.True(t, strings.HasPrefix(*post.ImageURL, "https://cdn.nusakala.id/community/user_1/"))
	assert.True(t, strings.HasSuffix(*post.ImageURL, ".png"))
	assert.Len(t, images.uploaded, 1)
}

func TestCreatePost_Rejected(t *testing.T) {
	store := newFakeCommunityStore()
	images := &fakeImageStore{}
	validator := &fakeValidator{verdict: &backend.Validation{Status: backend.StatusRejected, Reason: "hate speech"}}
	svc := NewCommunityService(store, images, validator, province.DefaultCatalog(), nil)

	_, err := svc.CreatePost(context.Background(), "user_1",
		&community.CreatePostRequest{Content: "..."},
		&community.Image{Data: pngHeader})
	assert.ErrorIs(t, err, ErrContentRejected)
	assert.Empty(t, store.posts)
	assert.Empty(t, images.uploaded)
}

func TestCreatePost_Validation(t *testing.T) {
	svc := NewCommunityService(newFakeCommunityStore(), nil, approve(), province.DefaultCatalog(), nil)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "u", &community.CreatePostRequest{Content: " "}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "u", &community.CreatePostRequest{Content: "hi", Province: "mordor"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "u", &community.CreatePostRequest{Content: "hi"}, &community.Image{Data: pngHeader})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDeletePost_OnlyAuthor(t *testing.T) {
	store := newFakeCommunityStore()
	images := &fakeImageStore{}
	svc := NewCommunityService(store, images, approve(), province.DefaultCatalog(), nil)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "author", &community.CreatePostRequest{Content: "Reog Ponorogo!"}, &community.Image{Data: pngHeader})
	require.NoError(t, err)

	err = svc.DeletePost(ctx, "someone-else", post.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeletePost(ctx, "author", post.ID))
	assert.Len(t, images.deleted, 1)

	err = svc.DeletePost(ctx, "author", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLikeAndComments(t *testing.T) {
	svc := NewCommunityService(newFakeCommunityStore(), nil, approve(), province.DefaultCatalog(), nil)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "author", &community.CreatePostRequest{Content: "Pempek enak"}, nil)
	require.NoError(t, err)

	res, err := svc.ToggleLike(ctx, "fan", post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.Likes)

	res, err = svc.ToggleLike(ctx, "fan", post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.Likes)

	_, err = svc.ToggleLike(ctx, "fan", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := svc.AddComment(ctx, "fan", post.ID, "  Setuju!  ")
	require.NoError(t, err)
	assert.Equal(t, "Setuju!", c.Content)

	comments, err := svc.Comments(ctx, "fan", post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, c.ID, comments[0].ID)

	_, err = svc.AddComment(ctx, "fan", post.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeed_ClampsAndFilters(t *testing.T) {
	svc := NewCommunityService(newFakeCommunityStore(), nil, approve(), province.DefaultCatalog(), nil)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "a", &community.CreatePostRequest{Content: "Bromo", Province: "Jawa Timur"}, nil)
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, "a", &community.CreatePostRequest{Content: "Tidak ada provinsi"}, nil)
	require.NoError(t, err)

	posts, err := svc.Feed(ctx, "", community.FeedQuery{Province: "Jawa Timur", Limit: 1000})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Bromo", posts[0].Content)
}

func TestFeedHub_BroadcastsNewPosts(t *testing.T) {
	hub := NewFeedHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn, r.URL.Query().Get("province"))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	baliConn, _, err := websocket.DefaultDialer.Dial(wsURL+"?province=bali", nil)
	require.NoError(t, err)
	defer baliConn.Close()
	allConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer allConn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	svc := NewCommunityService(newFakeCommunityStore(), nil, approve(), province.DefaultCatalog(), hub)
	_, err = svc.CreatePost(context.Background(), "a", &community.CreatePostRequest{Content: "Danau Toba", Province: "Sumatera Utara"}, nil)
	require.NoError(t, err)
	_, err = svc.CreatePost(context.Background(), "a", &community.CreatePostRequest{Content: "Ubud", Province: "Bali"}, nil)
	require.NoError(t, err)

	readEvent := func(conn *websocket.Conn) FeedEvent {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev FeedEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	}

	// The Bali subscriber only sees the Bali post.
	ev := readEvent(baliConn)
	assert.Equal(t, FeedPostCreated, ev.Type)
	assert.Equal(t, "Ubud", ev.Post.(map[string]any)["content"])

	first := readEvent(allConn)
	second := readEvent(allConn)
	assert.Equal(t, "Danau Toba", first.Post.(map[string]any)["content"])
	assert.Equal(t, "Ubud", second.Post.(map[string]any)["content"])

	baliConn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestPendingPost_OnlyVisibleToAuthor(t *testing.T) {
	hub := NewFeedHub()
	svc := NewCommunityService(newFakeCommunityStore(), nil,
		&fakeValidator{verdict: &backend.Validation{Status: backend.StatusPendingReview}},
		province.DefaultCatalog(), hub)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "author", &community.CreatePostRequest{Content: "Tari Kecak di Uluwatu"}, nil)
	require.NoError(t, err)
	require.Equal(t, "pending_review", post.ValidationStatus)

	_, err = svc.ToggleLike(ctx, "stranger", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddComment(ctx, "stranger", post.ID, "Keren!")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Comments(ctx, "", post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeletePost(ctx, "stranger", post.ID), ErrNotFound)

	_, err = svc.Comments(ctx, "author", post.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(ctx, "author", post.ID))

	// Nothing about the pending post reaches subscribers.
	assert.Empty(t, hub.broadcast)
}

func TestPostLookup_MalformedID(t *testing.T) {
	svc := NewCommunityService(newFakeCommunityStore(), nil, approve(), province.DefaultCatalog(), nil)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "fan", "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Comments(ctx, "", "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeletePost(ctx, "fan", "abc"), ErrNotFound)
}

func TestFeedHub_StoppedHubDoesNotBlock(t *testing.T) {
	hub := NewFeedHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	serverConns := make(chan *websocket.Conn, 2)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	defer srv.Close()

	dial := func() (*websocket.Conn, *websocket.Conn) {
		client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		require.NoError(t, err)
		select {
		case server := <-serverConns:
			return client, server
		case <-time.After(2 * time.Second):
			t.Fatal("server never accepted the connection")
			return nil, nil
		}
	}

	cancel()
	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	client, server := dial()
	defer client.Close()
	defer server.Close()

	attached := make(chan *FeedClient, 1)
	go func() { attached <- hub.Attach(server, "") }()
	select {
	case c := <-attached:
		assert.Nil(t, c)
	case <-time.After(2 * time.Second):
		t.Fatal("Attach blocked on a stopped hub")
	}

	// A pump of a client that outlived the hub still exits once its peer goes away.
	client2, server2 := dial()
	fc := &FeedClient{Hub: hub, Conn: server2, Send: make(chan []byte, 1)}
	finished := make(chan struct{})
	go func() {
		fc.ReadPump()
		close(finished)
	}()
	client2.Close()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("ReadPump blocked on a stopped hub")
	}

	svc := NewCommunityService(newFakeCommunityStore(), nil, approve(), province.DefaultCatalog(), hub)
	assert.ErrorIs(t, svc.Subscribe(server, ""), ErrUnavailable)
}
