package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nusakalaAPI/internal/types/community"
)

type CommunityStore interface {
	InsertPost(ctx context.Context, post *community.Post) error
	// Feed lists approved posts plus the viewer's own posts awaiting review,
	// newest first.
	Feed(ctx context.Context, viewerID string, q community.FeedQuery) ([]*community.Post, error)
	GetPost(ctx context.Context, postID, viewerID string) (*community.Post, error)
	DeletePost(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID, userID string) (*community.LikeResult, error)
	InsertComment(ctx context.Context, c *community.Comment) error
	Comments(ctx context.Context, postID string) ([]*community.Comment, error)
}

type PgCommunityStore struct {
	db *pgxpool.Pool
}

func NewPgCommunityStore(db *pgxpool.Pool) *PgCommunityStore {
	return &PgCommunityStore{db: db}
}

const postColumns = `
	p.id, p.author_id, COALESCE(u.username, ''), u.image_url,
	p.content, p.image_url, p.image_key, p.province, p.validation_status,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)::int,
	(SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id)::int,
	EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1),
	p.created_at`

func scanPost(row pgx.Row) (*community.Post, error) {
	p := &community.Post{}
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorName,
		&p.AuthorAvatar,
		&p.Content,
		&p.ImageURL,
		&p.ImageKey,
		&p.Province,
		&p.ValidationStatus,
		&p.Likes,
		&p.Comments,
		&p.LikedByMe,
		&p.CreatedAt,
	)
	return p, err
}

func (s *PgCommunityStore) InsertPost(ctx context.Context, post *community.Post) error {
	err := s.db.QueryRow(ctx, `
	INSERT INTO posts (id, author_id, content, image_url, image_key, province, validation_status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.ImageURL,
		post.ImageKey,
		post.Province,
		post.ValidationStatus,
	).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	err = s.db.QueryRow(ctx, `SELECT COALESCE(username, ''), image_url FROM users WHERE clerk_id = $1`, post.AuthorID).
		Scan(&post.AuthorName, &post.AuthorAvatar)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to load post author: %w", err)
	}
	return nil
}

func (s *PgCommunityStore) Feed(ctx context.Context, viewerID string, q community.FeedQuery) ([]*community.Post, error) {
	before := time.Now().Add(time.Minute)
	if q.Before != nil {
		before = *q.Before
	}

	query := `SELECT` + postColumns + `
	FROM posts p
	LEFT JOIN users u ON u.clerk_id = p.author_id
	WHERE (p.validation_status = 'approved' OR p.author_id = $1)
	  AND ($2 = '' OR p.province = $2)
	  AND p.created_at < $3
	ORDER BY p.created_at DESC
	LIMIT $4`

	rows, err := s.db.Query(ctx, query, viewerID, q.Province, before, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	posts := []*community.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *PgCommunityStore) GetPost(ctx context.Context, postID, viewerID string) (*community.Post, error) {
	query := `SELECT` + postColumns + `
	FROM posts p
	LEFT JOIN users u ON u.clerk_id = p.author_id
	WHERE p.id = $2
	  AND (p.validation_status = 'approved' OR p.author_id = $1)`

	p, err := scanPost(s.db.QueryRow(ctx, query, viewerID, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return p, nil
}

func (s *PgCommunityStore) DeletePost(ctx context.Context, postID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgCommunityStore) ToggleLike(ctx context.Context, postID, userID string) (*community.LikeResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	res := &community.LikeResult{}
	tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to unlike post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, postID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to like post: %w", err)
		}
		res.Liked = true
	}

	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&res.Likes); err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit like: %w", err)
	}
	return res, nil
}

func (s *PgCommunityStore) InsertComment(ctx context.Context, c *community.Comment) error {
	err := s.db.QueryRow(ctx, `
	WITH inserted AS (
		INSERT INTO post_comments (id, post_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	)
	SELECT inserted.created_at, COALESCE((SELECT username FROM users WHERE clerk_id = $3), '')
	FROM inserted`,
		c.ID, c.PostID, c.AuthorID, c.Content,
	).Scan(&c.CreatedAt, &c.AuthorName)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (s *PgCommunityStore) Comments(ctx context.Context, postID string) ([]*community.Comment, error) {
	rows, err := s.db.Query(ctx, `
	SELECT c.id, c.post_id, c.author_id, COALESCE(u.username, ''), c.content, c.created_at
	FROM post_comments c
	LEFT JOIN users u ON u.clerk_id = c.author_id
	WHERE c.post_id = $1
	ORDER BY c.created_at ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []*community.Comment{}
	for rows.Next() {
		c := &community.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
