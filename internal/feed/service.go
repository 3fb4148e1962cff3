package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/cache"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/pagination"
)

// Viewer identifies whose feed is being cached. UserID is 0 while the user is unknown.
type Viewer interface {
	UserID() int64
}

// Service defines feed operations
type Service interface {
	Feed() *pagination.Pager[Post]
	CachedFeed(ctx context.Context) ([]Post, bool)
	Reposts(thread int64, enabled bool) *pagination.Pager[Post]
	ToggleLike(ctx context.Context, post Post, apply func(Post)) (Post, error)
	CreateRepost(ctx context.Context, req *CreateRepostRequest) (*Post, error)
	Delete(ctx context.Context, postID int64) error
	ForgetCached(ctx context.Context) error
}

type service struct {
	repo   Repository
	cache  cache.Store
	ttl    time.Duration
	viewer Viewer

	mu      sync.Mutex
	written map[string]bool
}

// NewService creates the feed service. The first feed page is cached per viewer;
// a nil store or viewer disables warm-start caching.
func NewService(repo Repository, store cache.Store, ttl time.Duration, viewer Viewer) Service {
	return &service{repo: repo, cache: store, ttl: ttl, viewer: viewer, written: make(map[string]bool)}
}

func firstPageKey(userID int64) string {
	return fmt.Sprintf("feed:%d:page:1", userID)
}

func (s *service) viewerID() int64 {
	if s.cache == nil || s.viewer == nil {
		return 0
	}
	return s.viewer.UserID()
}

func isOriginal(p Post) bool { return !p.IsRepost }
func isRepost(p Post) bool   { return p.IsRepost }

// Feed returns a pager over the primary feed with reposts removed
func (s *service) Feed() *pagination.Pager[Post] {
	owner := s.viewerID()
	return pagination.New[Post](s.repo.FeedPage,
		pagination.WithFilter(isOriginal),
		pagination.OnPage(func(ctx context.Context, cursor string, page common.Page[Post]) {
			s.rememberFirstPage(ctx, owner, cursor, page)
		}),
	)
}

// rememberFirstPage caches page 1 for owner, unless the viewer changed while it loaded
func (s *service) rememberFirstPage(ctx context.Context, owner int64, cursor string, page common.Page[Post]) {
	if owner == 0 || cursor != common.FirstCursor || s.viewerID() != owner {
		return
	}
	key := firstPageKey(owner)
	if err := s.cache.Set(ctx, key, page.Results, s.ttl); err != nil {
		log.Printf("feed: failed to cache first page: %v", err)
		return
	}
	s.mu.Lock()
	s.written[key] = true
	s.mu.Unlock()
}

// CachedFeed returns the last first page seen, for painting before the network answers
func (s *service) CachedFeed(ctx context.Context) ([]Post, bool) {
	owner := s.viewerID()
	if owner == 0 {
		return nil, false
	}
	var posts []Post
	ok, err := s.cache.Get(ctx, firstPageKey(owner), &posts)
	if err != nil {
		log.Printf("feed: failed to read cached first page: %v", err)
		return nil, false
	}
	return posts, ok
}

// Reposts returns a pager over the reposts of thread. It stays disabled until a thread is known.
func (s *service) Reposts(thread int64, enabled bool) *pagination.Pager[Post] {
	fetch := func(ctx context.Context, cursor string) (*common.Page[Post], error) {
		return s.repo.RepostPage(ctx, thread, cursor)
	}
	return pagination.New[Post](fetch,
		pagination.WithFilter(isRepost),
		pagination.WithEnabled[Post](thread != 0 && enabled),
	)
}

// ToggleLike flips the like on post right away through apply, then reconciles with the
// server. On failure apply receives the original post again.
func (s *service) ToggleLike(ctx context.Context, post Post, apply func(Post)) (Post, error) {
	if apply == nil {
		apply = func(Post) {}
	}
	snapshot := post.clone()

	optimistic := post.clone()
	optimistic.IsLiked = !post.IsLiked
	if optimistic.IsLiked {
		optimistic.TotalLikes++
	} else if optimistic.TotalLikes > 0 {
		optimistic.TotalLikes--
	}
	apply(optimistic)

	resp, err := s.repo.Like(ctx, post.ID)
	if err != nil {
		apply(snapshot)
		return snapshot, fmt.Errorf("failed to like post: %w", err)
	}

	reconciled := optimistic
	if resp.IsLiked != nil {
		reconciled.IsLiked = *resp.IsLiked
	}
	if resp.TotalLikes != nil {
		reconciled.TotalLikes = *resp.TotalLikes
	}
	apply(reconciled)
	return reconciled, nil
}

func (s *service) CreateRepost(ctx context.Context, req *CreateRepostRequest) (*Post, error) {
	req.Content = common.SanitizeString(req.Content)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.repo.CreateRepost(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create repost: %w", err)
	}
	return post, nil
}

func (s *service) Delete(ctx context.Context, postID int64) error {
	if err := s.repo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if owner := s.viewerID(); owner != 0 {
		if err := s.cache.Delete(ctx, firstPageKey(owner)); err != nil {
			log.Printf("feed: failed to drop cached first page: %v", err)
		}
	}
	return nil
}

// ForgetCached drops every first page this service cached. Call it when the session ends.
func (s *service) ForgetCached(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.written))
	for key := range s.written {
		keys = append(keys, key)
	}
	s.written = make(map[string]bool)
	s.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to drop cached feed %s: %w", key, err)
		}
	}
	return firstErr
}
