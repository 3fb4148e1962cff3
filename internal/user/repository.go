package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
)

var (
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrAssetUpload     = errors.New("bundled assets cannot be uploaded")
)

const profileKey = "user:profile"

// Repository defines profile and account endpoints
type Repository interface {
	Profile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*Profile, error)
	Deactivate(ctx context.Context) error
	RequestDelete(ctx context.Context) error
}

// HTTPRepository talks to the backend's /user/ endpoints
type HTTPRepository struct {
	client *api.Client
}

func NewHTTPRepository(client *api.Client) Repository {
	return &HTTPRepository{client: client}
}

// Profile is coalesced: concurrent callers share one request
func (r *HTTPRepository) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := r.client.GetShared(ctx, profileKey, "/user/profile/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *HTTPRepository) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*Profile, error) {
	form := api.NewForm()
	if req.DisplayName != nil {
		form.Field("display_name", *req.DisplayName)
	}
	if req.Bio != nil {
		form.Field("bio", *req.Bio)
	}
	if err := attach(form, "profile_image", req.ProfileImage); err != nil {
		return nil, err
	}
	if err := attach(form, "cover_image", req.CoverImage); err != nil {
		return nil, err
	}

	var p Profile
	if err := r.client.PostMultipart(ctx, "/user/profile/update/", form, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func attach(form *api.Form, field string, src *media.Source) error {
	if src == nil {
		return nil
	}
	if src.IsAsset() {
		return fmt.Errorf("%s: %w", field, ErrAssetUpload)
	}
	form.File(field, src.Name, src.MimeType, src.Open)
	return nil
}

func (r *HTTPRepository) Deactivate(ctx context.Context) error {
	return r.client.Post(ctx, "/user/deactivate-account/", nil, nil)
}

func (r *HTTPRepository) RequestDelete(ctx context.Context) error {
	return r.client.Post(ctx, "/user/request-delete/", nil, nil)
}
