package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/session"
)

var (
	ErrIDTokenExpired   = errors.New("google id token has expired")
	ErrIDTokenMalformed = errors.New("google id token is malformed")
)

// Session is the part of the session store the auth flows write to
type Session interface {
	Login(token string, user *session.User) error
	SetUser(user *session.User)
	Logout() bool
}

// Service defines auth operations
type Service interface {
	Login(ctx context.Context, req *LoginRequest) (*session.User, error)
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	GoogleLogin(ctx context.Context, idToken string) (*session.User, error)
	Logout(ctx context.Context) bool
}

type service struct {
	repo    Repository
	session Session
	now     func() time.Time
}

// NewService creates a new auth service
func NewService(repo Repository, sess Session) Service {
	return &service{
		repo:    repo,
		session: sess,
		now:     time.Now,
	}
}

// Login exchanges credentials for a token and starts a session
func (s *service) Login(ctx context.Context, req *LoginRequest) (*session.User, error) {
	req.Username = common.SanitizeString(req.Username)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	token, err := s.repo.ObtainToken(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return s.start(ctx, token)
}

// Register creates an account. When the backend hands back a token the session starts right away.
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.Email = common.SanitizeEmail(req.Email)
	req.Username = common.SanitizeString(req.Username)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	resp, err := s.repo.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if resp.Key != "" {
		if _, err := s.start(ctx, resp.Key); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// GoogleLogin trades a Google id token for a backend token. The id token's signature is
// checked by the backend; here it is only decoded to catch expiry before a round trip.
func (s *service) GoogleLogin(ctx context.Context, idToken string) (*session.User, error) {
	req := &GoogleLoginRequest{IDToken: idToken}
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkIDToken(idToken); err != nil {
		return nil, err
	}

	token, err := s.repo.GoogleLogin(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to log in with google: %w", err)
	}
	return s.start(ctx, token)
}

func (s *service) checkIDToken(idToken string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return fmt.Errorf("%w: %v", ErrIDTokenMalformed, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIDTokenMalformed, err)
	}
	if exp != nil && !s.now().Before(exp.Time) {
		return ErrIDTokenExpired
	}
	return nil
}

// Logout ends the session locally and reports whether one was active
func (s *service) Logout(ctx context.Context) bool {
	return s.session.Logout()
}

// start stores the token first so the profile request is authenticated. The user is nil
// when the profile could not be loaded; the session stays logged in.
func (s *service) start(ctx context.Context, token string) (*session.User, error) {
	if err := s.session.Login(token, nil); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	user, err := s.repo.Profile(ctx)
	if err != nil {
		log.Printf("auth: logged in but failed to load profile: %v", err)
		return nil, nil
	}
	s.session.SetUser(user)
	return user, nil
}
