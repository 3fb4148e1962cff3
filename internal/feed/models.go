package feed

import (
	"io"
	"time"
)

// FileType is the kind of a post attachment
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// Post represents a feed entry: an original post or a repost of one
type Post struct {
	ID            int64       `json:"id"`
	User          PostUser    `json:"user"`
	Content       string      `json:"content"`
	Title         *string     `json:"title,omitempty"`
	Images        []PostImage `json:"images"`
	Thread        *int64      `json:"thread"`
	IsLiked       bool        `json:"is_liked"`
	IsRepost      bool        `json:"is_repost"`
	IsDraft       bool        `json:"is_draft"`
	IsHighlight   bool        `json:"is_highlight"`
	TotalLikes    int         `json:"total_likes"`
	TotalComments int         `json:"total_comments"`
	TotalReposts  int         `json:"total_reposts"`
	DateCreated   time.Time   `json:"date_created"`
}

// PostImage represents media attached to a post
type PostImage struct {
	ID        int64    `json:"id"`
	File      string   `json:"file"`
	FileType  FileType `json:"file_type"`
	Thumbnail *string  `json:"thumbnail,omitempty"`
}

// PostUser represents the author info in a post response
type PostUser struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	DisplayName  *string `json:"display_name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// ThreadID returns the thread the post belongs to, or 0 when it has none
func (p Post) ThreadID() int64 {
	if p.Thread == nil {
		return 0
	}
	return *p.Thread
}

func (p Post) clone() Post {
	c := p
	c.Images = append([]PostImage(nil), p.Images...)
	return c
}

// LikeResponse is what the like endpoint returns. Both fields are optional.
type LikeResponse struct {
	IsLiked    *bool `json:"is_liked"`
	TotalLikes *int  `json:"total_likes"`
}

// Attachment is one file uploaded with a repost
type Attachment struct {
	Name     string
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// CreateRepostRequest represents a request to repost a thread
type CreateRepostRequest struct {
	Thread  int64        `json:"thread" validate:"required,gt=0"`
	Content string       `json:"content" validate:"omitempty,max=2000"`
	Images  []Attachment `json:"-" validate:"max=10"`
}
