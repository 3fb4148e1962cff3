package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingKey         = errors.New("login response carried no token")
)

// ProfileKey is the coalescing key for current-profile requests
const ProfileKey = "user:profile"

// Repository defines auth endpoints
type Repository interface {
	ObtainToken(ctx context.Context, req *LoginRequest) (string, error)
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	GoogleLogin(ctx context.Context, req *GoogleLoginRequest) (string, error)
	Profile(ctx context.Context) (*session.User, error)
}

// HTTPRepository talks to the backend's /user/ endpoints
type HTTPRepository struct {
	client *api.Client
}

func NewHTTPRepository(client *api.Client) Repository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) ObtainToken(ctx context.Context, req *LoginRequest) (string, error) {
	var resp TokenResponse
	if err := r.client.Post(ctx, "/user/obtain-token/", req, &resp); err != nil {
		return "", credentials(err)
	}
	if resp.Key == "" {
		return "", ErrMissingKey
	}
	return resp.Key, nil
}

func (r *HTTPRepository) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := r.client.Post(ctx, "/user/user-register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *HTTPRepository) GoogleLogin(ctx context.Context, req *GoogleLoginRequest) (string, error) {
	var resp TokenResponse
	if err := r.client.Post(ctx, "/user/google-login/", req, &resp); err != nil {
		return "", credentials(err)
	}
	if resp.Key == "" {
		return "", ErrMissingKey
	}
	return resp.Key, nil
}

func (r *HTTPRepository) Profile(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := r.client.GetShared(ctx, ProfileKey, "/user/profile/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// the token endpoint answers bad credentials with 400 or 401
func credentials(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return err
}
