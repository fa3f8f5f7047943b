package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nusakalaAPI/internal/backend"
	"nusakalaAPI/internal/province"
	"nusakalaAPI/internal/types/community"
)

const (
	maxPostChars      = 2000
	maxCommentChars   = 1000
	maxPostImageBytes = 5 << 20
	defaultFeedLimit  = 20
	maxFeedLimit      = 50
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageStore keeps uploaded post images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type CommunityService struct {
	store     CommunityStore
	images    ImageStore
	validator ContentValidator
	provinces *province.Catalog
	hub       *FeedHub
}

// NewCommunityService builds the service. images and hub may be nil; posts
// with an image are then refused and nothing is broadcast.
func NewCommunityService(store CommunityStore, images ImageStore, validator ContentValidator, provinces *province.Catalog, hub *FeedHub) *CommunityService {
	return &CommunityService{
		store:     store,
		images:    images,
		validator: validator,
		provinces: provinces,
		hub:       hub,
	}
}

func (s *CommunityService) Feed(ctx context.Context, viewerID string, q community.FeedQuery) ([]*community.Post, error) {
	if q.Limit <= 0 {
		q.Limit = defaultFeedLimit
	}
	if q.Limit > maxFeedLimit {
		q.Limit = maxFeedLimit
	}
	slug, err := s.FeedProvince(q.Province)
	if err != nil {
		return nil, err
	}
	q.Province = slug
	return s.store.Feed(ctx, viewerID, q)
}

// FeedProvince resolves a province filter given as name or slug. An empty
// filter stays empty.
func (s *CommunityService) FeedProvince(nameOrSlug string) (string, error) {
	if nameOrSlug == "" {
		return "", nil
	}
	p, ok := s.provinces.Lookup(nameOrSlug)
	if !ok {
		return "", fmt.Errorf("%w: unknown province %q", ErrInvalidInput, nameOrSlug)
	}
	return p.Slug, nil
}

// Subscribe attaches an upgraded connection to the live feed.
func (s *CommunityService) Subscribe(conn *websocket.Conn, provinceSlug string) error {
	if s.hub == nil {
		return ErrUnavailable
	}
	if s.hub.Attach(conn, provinceSlug) == nil {
		return ErrUnavailable
	}
	return nil
}

func (s *CommunityService) CreatePost(ctx context.Context, userID string, req *community.CreatePostRequest, image *community.Image) (*community.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxPostChars {
		return nil, fmt.Errorf("%w: content must be at most %d characters", ErrInvalidInput, maxPostChars)
	}

	post := &community.Post{
		ID:       uuid.NewString(),
		AuthorID: userID,
		Content:  content,
	}

	if req.Province != "" {
		p, ok := s.provinces.Lookup(req.Province)
		if !ok {
			return nil, fmt.Errorf("%w: unknown province %q", ErrInvalidInput, req.Province)
		}
		post.Province = &p.Slug
	}

	var contentType string
	if image != nil {
		if s.images == nil {
			return nil, ErrUnavailable
		}
		if len(image.Data) > maxPostImageBytes {
			return nil, fmt.Errorf("%w: image must be at most 5 MB", ErrInvalidInput)
		}
		ct, err := DetectImageType(image.Data, image.ContentType)
		if err != nil {
			return nil, err
		}
		contentType = ct
	}

	verdict, err := s.validator.ValidateContent(ctx, "post", content)
	if err != nil {
		return nil, fmt.Errorf("failed to validate post: %w", err)
	}
	if verdict.Status == backend.StatusRejected {
		return nil, fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}
	post.ValidationStatus = string(verdict.Status)

	if image != nil {
		key := fmt.Sprintf("community/%s/%s.%s", userID, post.ID, imageExtensions[contentType])
		url, err := s.images.Upload(ctx, key, image.Data, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload post image: %w", err)
		}
		post.ImageURL = &url
		post.ImageKey = &key
	}

	if err := s.store.InsertPost(ctx, post); err != nil {
		if post.ImageKey != nil {
			if delErr := s.images.Delete(ctx, *post.ImageKey); delErr != nil {
				log.Printf("Community: failed to remove orphaned image %s: %v", *post.ImageKey, delErr)
			}
		}
		return nil, err
	}

	if s.hub != nil && verdict.Status == backend.StatusApproved {
		province := ""
		if post.Province != nil {
			province = *post.Province
		}
		s.hub.Publish(province, FeedEvent{Type: FeedPostCreated, PostID: post.ID, Post: post})
	}

	return post, nil
}

// visiblePost loads a post the viewer may act on: any approved post, or
// the viewer's own post while it is pending review.
func (s *CommunityService) visiblePost(ctx context.Context, postID, viewerID string) (*community.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, ErrNotFound
	}
	post, err := s.store.GetPost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post.ValidationStatus != string(backend.StatusApproved) && post.AuthorID != viewerID {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *CommunityService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrForbidden
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}

	if post.ImageKey != nil && s.images != nil {
		if err := s.images.Delete(ctx, *post.ImageKey); err != nil {
			log.Printf("Community: failed to delete image %s: %v", *post.ImageKey, err)
		}
	}

	// Subscribers only ever saw approved posts.
	if s.hub != nil && post.ValidationStatus == string(backend.StatusApproved) {
		province := ""
		if post.Province != nil {
			province = *post.Province
		}
		s.hub.Publish(province, FeedEvent{Type: FeedPostDeleted, PostID: postID})
	}
	return nil
}

func (s *CommunityService) ToggleLike(ctx context.Context, userID, postID string) (*community.LikeResult, error) {
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.store.ToggleLike(ctx, postID, userID)
}

func (s *CommunityService) AddComment(ctx context.Context, userID, postID, content string) (*community.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentChars {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", ErrInvalidInput, maxCommentChars)
	}

	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return nil, err
	}

	verdict, err := s.validator.ValidateContent(ctx, "comment", content)
	if err != nil {
		return nil, fmt.Errorf("failed to validate comment: %w", err)
	}
	if verdict.Status == backend.StatusRejected {
		return nil, fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}

	c := &community.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommunityService) Comments(ctx context.Context, viewerID, postID string) ([]*community.Comment, error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return s.store.Comments(ctx, postID)
}
