package user

import (
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/session"
)

// Profile is the current user's profile as the backend returns it
type Profile struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name,omitempty"`
	LastName     string  `json:"last_name,omitempty"`
	DisplayName  *string `json:"display_name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	CoverImage   *string `json:"cover_image,omitempty"`
	TotalPosts   int64   `json:"total_posts"`
	Followers    int64   `json:"followers"`
	Following    int64   `json:"following"`
}

// SessionUser is the slice of the profile kept in the session
func (p *Profile) SessionUser() *session.User {
	return &session.User{
		ID:           p.ID,
		Username:     p.Username,
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		ProfileImage: p.ProfileImage,
	}
}

// UpdateProfileRequest represents a profile edit. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName  *string       `json:"display_name" validate:"omitempty,max=100"`
	Bio          *string       `json:"bio" validate:"omitempty,max=500"`
	ProfileImage *media.Source `json:"-"`
	CoverImage   *media.Source `json:"-"`
}

func (r *UpdateProfileRequest) empty() bool {
	return r.DisplayName == nil && r.Bio == nil && r.ProfileImage == nil && r.CoverImage == nil
}
