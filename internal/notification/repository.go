package notification

import (
	"context"
	"net/url"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
)

// Repository defines notification data operations
type Repository interface {
	Page(ctx context.Context, cursor string) (*common.Page[Notification], error)
}

// HTTPRepository reads notifications from the backend
type HTTPRepository struct {
	client *api.Client
}

func NewHTTPRepository(client *api.Client) Repository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) Page(ctx context.Context, cursor string) (*common.Page[Notification], error) {
	var page common.Page[Notification]
	if err := r.client.Get(ctx, "/notifications/", url.Values{"page": {cursor}}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
