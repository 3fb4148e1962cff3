package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNoThread     = errors.New("post has no thread")
)

// Repository defines feed data operations
type Repository interface {
	FeedPage(ctx context.Context, cursor string) (*common.Page[Post], error)
	RepostPage(ctx context.Context, thread int64, cursor string) (*common.Page[Post], error)
	Like(ctx context.Context, postID int64) (*LikeResponse, error)
	CreateRepost(ctx context.Context, req *CreateRepostRequest) (*Post, error)
	Delete(ctx context.Context, postID int64) error
}

// HTTPRepository reads and writes the feed through the backend REST API
type HTTPRepository struct {
	client *api.Client
}

func NewHTTPRepository(client *api.Client) Repository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) FeedPage(ctx context.Context, cursor string) (*common.Page[Post], error) {
	var page common.Page[Post]
	if err := r.client.Get(ctx, "/feed/", url.Values{"page": {cursor}}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *HTTPRepository) RepostPage(ctx context.Context, thread int64, cursor string) (*common.Page[Post], error) {
	if thread == 0 {
		return nil, ErrNoThread
	}
	query := url.Values{
		"page":      {cursor},
		"is_repost": {"true"},
	}
	var page common.Page[Post]
	if err := r.client.Get(ctx, fmt.Sprintf("/feed/%d/get-reposts/", thread), query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *HTTPRepository) Like(ctx context.Context, postID int64) (*LikeResponse, error) {
	var resp LikeResponse
	if err := r.client.Post(ctx, fmt.Sprintf("/feed/%d/like/", postID), nil, &resp); err != nil {
		return nil, notFound(err)
	}
	return &resp, nil
}

func (r *HTTPRepository) CreateRepost(ctx context.Context, req *CreateRepostRequest) (*Post, error) {
	form := api.NewForm().
		Field("thread", fmt.Sprint(req.Thread)).
		Field("content", req.Content)
	for _, img := range req.Images {
		form.File("images", img.Name, img.MimeType, img.Open)
	}

	var post Post
	if err := r.client.PostMultipart(ctx, "/feed/create-repost/", form, &post); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, postID int64) error {
	return notFound(r.client.Delete(ctx, fmt.Sprintf("/feed/%d/", postID)))
}

func notFound(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrPostNotFound, err)
	}
	return err
}
