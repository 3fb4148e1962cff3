package user

import (
	"context"
	"fmt"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/session"
)

// Session is the part of the session store profile operations touch
type Session interface {
	User() *session.User
	SetUser(user *session.User)
	EndSession(reason string) bool
}

// Service defines profile and account operations
type Service interface {
	Current(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*Profile, error)
	Deactivate(ctx context.Context) error
	RequestDelete(ctx context.Context) error
}

type service struct {
	repo    Repository
	session Session
}

// NewService creates a new user service
func NewService(repo Repository, sess Session) Service {
	return &service{repo: repo, session: sess}
}

// Current fetches the profile and refreshes the session's copy of the user
func (s *service) Current(ctx context.Context) (*Profile, error) {
	p, err := s.repo.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	s.session.SetUser(p.SessionUser())
	return p, nil
}

// UpdateProfile shows the edit in the session user immediately and puts the previous
// user back if the backend rejects it.
func (s *service) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*Profile, error) {
	if req.empty() {
		return nil, ErrNothingToUpdate
	}
	if req.DisplayName != nil {
		name := common.SanitizeString(*req.DisplayName)
		req.DisplayName = &name
	}
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	snapshot := s.session.User()
	if snapshot != nil {
		optimistic := *snapshot
		if req.DisplayName != nil {
			optimistic.DisplayName = req.DisplayName
		}
		if req.ProfileImage != nil && !req.ProfileImage.IsAsset() {
			uri := req.ProfileImage.URI
			optimistic.ProfileImage = &uri
		}
		s.session.SetUser(&optimistic)
	}

	p, err := s.repo.UpdateProfile(ctx, req)
	if err != nil {
		if snapshot != nil {
			s.session.SetUser(snapshot)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.session.SetUser(p.SessionUser())
	return p, nil
}

// Deactivate disables the account and ends the session
func (s *service) Deactivate(ctx context.Context) error {
	if err := s.repo.Deactivate(ctx); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	s.session.EndSession(session.ReasonDeactivated)
	return nil
}

// RequestDelete asks for account deletion and ends the session
func (s *service) RequestDelete(ctx context.Context) error {
	if err := s.repo.RequestDelete(ctx); err != nil {
		return fmt.Errorf("failed to request account deletion: %w", err)
	}
	s.session.EndSession(session.ReasonDeleted)
	return nil
}
