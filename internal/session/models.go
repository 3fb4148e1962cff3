package session

// User is the authenticated identity held by the session
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	DisplayName  *string `json:"display_name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Logout reasons passed to OnLogout listeners
const (
	ReasonUserLogout  = "logout"
	ReasonExpired     = "expired"
	ReasonDeactivated = "deactivated"
	ReasonDeleted     = "deleted"
)
