package notification

import (
	"time"
)

// NotificationType represents types of notifications
type NotificationType string

const (
	TypeFollow  NotificationType = "follow"
	TypeLike    NotificationType = "like"
	TypeComment NotificationType = "comment"
	TypeMention NotificationType = "mention"
	TypeRepost  NotificationType = "repost"
)

// Notification represents a notification
type Notification struct {
	ID        int64              `json:"id"`
	Type      NotificationType   `json:"type"`
	Message   string             `json:"message"`
	Post      *int64             `json:"post,omitempty"`
	IsRead    bool               `json:"is_read"`
	CreatedAt time.Time          `json:"created_at"`
	Actor     *NotificationActor `json:"actor,omitempty"`
}

// NotificationActor represents the user who triggered the notification
type NotificationActor struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	DisplayName  *string `json:"display_name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}
