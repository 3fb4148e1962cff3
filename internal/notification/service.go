package notification

import (
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/pagination"
)

type Service interface {
	List() *pagination.Pager[Notification]
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List returns a pager over the notifications, newest first as the backend orders them
func (s *service) List() *pagination.Pager[Notification] {
	return pagination.New[Notification](s.repo.Page)
}

// UnreadCount counts the unread notifications in items
func UnreadCount(items []Notification) int {
	n := 0
	for _, item := range items {
		if !item.IsRead {
			n++
		}
	}
	return n
}
