package community

import "time"

type Post struct {
	ID               string    `json:"id"`
	AuthorID         string    `json:"authorId"`
	AuthorName       string    `json:"authorName"`
	AuthorAvatar     *string   `json:"authorAvatar,omitempty"`
	Content          string    `json:"content"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	ImageKey         *string   `json:"-"`
	Province         *string   `json:"province,omitempty"`
	ValidationStatus string    `json:"validationStatus"`
	Likes            int       `json:"likes"`
	Comments         int       `json:"comments"`
	LikedByMe        bool      `json:"likedByMe"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreatePostRequest struct {
	Content  string `json:"content"`
	Province string `json:"province,omitempty"`
}

// Image is an uploaded file attached to a new post.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

type FeedQuery struct {
	Province string
	Before   *time.Time
	Limit    int
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}
