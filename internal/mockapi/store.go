package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/notification"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPostNotFound       = errors.New("post not found")
	ErrForbidden          = errors.New("forbidden")
	ErrMediaNotFound      = errors.New("media not found")
)

type account struct {
	profile      user.Profile
	passwordHash []byte
	active       bool
	deleteAsked  bool
}

type postRecord struct {
	post  feed.Post
	likes map[int64]bool
}

type mediaObject struct {
	contentType string
	data        []byte
}

// Store is the in-memory state of the mock backend
type Store struct {
	mu            sync.RWMutex
	nextID        int64
	accounts      map[int64]*account
	tokens        map[string]int64
	posts         []*postRecord // newest first
	notifications map[int64][]notification.Notification
	media         map[string]mediaObject
	bcryptCost    int
	now           func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nextID:        1,
		accounts:      make(map[int64]*account),
		tokens:        make(map[string]int64),
		notifications: make(map[int64][]notification.Notification),
		media:         make(map[string]mediaObject),
		bcryptCost:    bcrypt.DefaultCost,
		now:           time.Now,
	}
}

// SetHashCost changes the bcrypt cost for accounts created afterwards
func (s *Store) SetHashCost(cost int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bcryptCost = cost
}

func (s *Store) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// CreateUser registers an account with a bcrypt password hash
func (s *Store) CreateUser(username, email, password string) (*user.Profile, error) {
	s.mu.RLock()
	cost := s.bcryptCost
	s.mu.RUnlock()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.profile.Username, username) {
			return nil, ErrUsernameExists
		}
		if email != "" && strings.EqualFold(a.profile.Email, email) {
			return nil, ErrEmailExists
		}
	}

	a := &account{
		profile:      user.Profile{ID: s.id(), Username: username, Email: email},
		passwordHash: hash,
		active:       true,
	}
	s.accounts[a.profile.ID] = a
	p := a.profile
	return &p, nil
}

// Authenticate checks credentials and issues a fresh token
func (s *Store) Authenticate(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.profile.Username != username || !a.active {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
		return s.issueLocked(a.profile.ID), nil
	}
	return "", ErrInvalidCredentials
}

// IssueToken creates a token for userID
func (s *Store) IssueToken(userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return "", ErrUserNotFound
	}
	return s.issueLocked(userID), nil
}

func (s *Store) issueLocked(userID int64) string {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.tokens[key] = userID
	return key
}

// UserForToken resolves a token to an active user id
func (s *Store) UserForToken(key string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[key]
	if !ok {
		return 0, false
	}
	a, ok := s.accounts[id]
	return id, ok && a.active
}

// RevokeTokens drops every token of userID
func (s *Store) RevokeTokens(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeLocked(userID)
}

func (s *Store) revokeLocked(userID int64) {
	for key, id := range s.tokens {
		if id == userID {
			delete(s.tokens, key)
		}
	}
}

// UserByEmail finds an account by email
func (s *Store) UserByEmail(email string) (*user.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.profile.Email, email) {
			p := a.profile
			return &p, nil
		}
	}
	return nil, ErrUserNotFound
}

// Profile returns the profile of userID with its counters filled in
func (s *Store) Profile(userID int64) (*user.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	p := a.profile
	for _, rec := range s.posts {
		if rec.post.User.ID == userID {
			p.TotalPosts++
		}
	}
	return &p, nil
}

// ProfileUpdate carries the fields of a profile edit. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName  *string
	Bio          *string
	ProfileImage *string
	CoverImage   *string
}

func (s *Store) UpdateProfile(userID int64, u ProfileUpdate) (*user.Profile, error) {
	s.mu.Lock()
	a, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrUserNotFound
	}
	if u.DisplayName != nil {
		a.profile.DisplayName = u.DisplayName
	}
	if u.Bio != nil {
		a.profile.Bio = u.Bio
	}
	if u.ProfileImage != nil {
		a.profile.ProfileImage = u.ProfileImage
	}
	if u.CoverImage != nil {
		a.profile.CoverImage = u.CoverImage
	}
	s.mu.Unlock()
	return s.Profile(userID)
}

// Deactivate disables the account and revokes its tokens
func (s *Store) Deactivate(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	a.active = false
	s.revokeLocked(userID)
	return nil
}

// RequestDelete flags the account for deletion and revokes its tokens
func (s *Store) RequestDelete(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	a.deleteAsked = true
	a.active = false
	s.revokeLocked(userID)
	return nil
}

// NewPost describes a post to create. Thread 0 on an original starts a new thread.
type NewPost struct {
	Content  string
	Title    *string
	Images   []feed.PostImage
	RepostOf int64
}

// CreatePost adds an original post or, with RepostOf set, a repost of that thread
func (s *Store) CreatePost(userID int64, np NewPost) (*feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	post := feed.Post{
		ID:          s.id(),
		User:        postUser(a),
		Content:     np.Content,
		Title:       np.Title,
		Images:      np.Images,
		DateCreated: s.now(),
	}
	for i := range post.Images {
		post.Images[i].ID = s.id()
	}

	if np.RepostOf != 0 {
		origin := s.originLocked(np.RepostOf)
		if origin == nil {
			return nil, ErrPostNotFound
		}
		thread := np.RepostOf
		post.Thread = &thread
		post.IsRepost = true
		origin.post.TotalReposts++
		s.notifyLocked(origin.post.User.ID, userID, notification.TypeRepost, origin.post.ID, "pinged your post")
	} else {
		thread := post.ID
		post.Thread = &thread
	}

	s.posts = append([]*postRecord{{post: post, likes: make(map[int64]bool)}}, s.posts...)
	return s.renderLocked(s.posts[0], userID), nil
}

// originLocked finds the original post of thread
func (s *Store) originLocked(thread int64) *postRecord {
	for _, rec := range s.posts {
		if !rec.post.IsRepost && rec.post.ThreadID() == thread {
			return rec
		}
	}
	return nil
}

func (s *Store) findLocked(postID int64) (int, *postRecord) {
	for i, rec := range s.posts {
		if rec.post.ID == postID {
			return i, rec
		}
	}
	return -1, nil
}

// DeletePost removes a post owned by userID
func (s *Store) DeletePost(userID, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, rec := s.findLocked(postID)
	if rec == nil {
		return ErrPostNotFound
	}
	if rec.post.User.ID != userID {
		return ErrForbidden
	}
	if rec.post.IsRepost {
		if origin := s.originLocked(rec.post.ThreadID()); origin != nil && origin.post.TotalReposts > 0 {
			origin.post.TotalReposts--
		}
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return nil
}

// ToggleLike flips userID's like on postID
func (s *Store) ToggleLike(userID, postID int64) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, rec := s.findLocked(postID)
	if rec == nil {
		return false, 0, ErrPostNotFound
	}
	if rec.likes[userID] {
		delete(rec.likes, userID)
	} else {
		rec.likes[userID] = true
		s.notifyLocked(rec.post.User.ID, userID, notification.TypeLike, postID, "liked your post")
	}
	return rec.likes[userID], len(rec.likes), nil
}

// Feed returns every post, newest first, as seen by viewer
func (s *Store) Feed(viewer int64) []feed.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]feed.Post, 0, len(s.posts))
	for _, rec := range s.posts {
		out = append(out, *s.renderLocked(rec, viewer))
	}
	return out
}

// Thread returns the posts of thread. Without onlyReposts the origin is included.
func (s *Store) Thread(viewer, thread int64, onlyReposts bool) []feed.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []feed.Post
	for _, rec := range s.posts {
		if rec.post.ThreadID() != thread || (onlyReposts && !rec.post.IsRepost) {
			continue
		}
		out = append(out, *s.renderLocked(rec, viewer))
	}
	return out
}

func (s *Store) renderLocked(rec *postRecord, viewer int64) *feed.Post {
	p := rec.post
	p.Images = append([]feed.PostImage(nil), rec.post.Images...)
	p.IsLiked = rec.likes[viewer]
	p.TotalLikes = len(rec.likes)
	if a, ok := s.accounts[p.User.ID]; ok {
		p.User = postUser(a)
	}
	return &p
}

func postUser(a *account) feed.PostUser {
	return feed.PostUser{
		ID:           a.profile.ID,
		Username:     a.profile.Username,
		DisplayName:  a.profile.DisplayName,
		ProfileImage: a.profile.ProfileImage,
	}
}

func (s *Store) notifyLocked(recipient, actor int64, typ notification.NotificationType, postID int64, msg string) {
	if recipient == actor {
		return
	}
	a, ok := s.accounts[actor]
	if !ok {
		return
	}
	post := postID
	n := notification.Notification{
		ID:        s.id(),
		Type:      typ,
		Message:   a.profile.Username + " " + msg,
		Post:      &post,
		CreatedAt: s.now(),
		Actor: &notification.NotificationActor{
			ID:           a.profile.ID,
			Username:     a.profile.Username,
			DisplayName:  a.profile.DisplayName,
			ProfileImage: a.profile.ProfileImage,
		},
	}
	s.notifications[recipient] = append([]notification.Notification{n}, s.notifications[recipient]...)
}

// Notifications returns the notifications of userID, newest first
func (s *Store) Notifications(userID int64) []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]notification.Notification(nil), s.notifications[userID]...)
}

// PutMedia stores an uploaded file and returns its media path
func (s *Store) PutMedia(dir, ext, contentType string, data []byte) string {
	p := dir + "/" + uuid.NewString() + strings.ToLower(ext)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[p] = mediaObject{contentType: contentType, data: data}
	return p
}

func (s *Store) Media(p string) (mediaObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.media[p]
	if !ok {
		return mediaObject{}, ErrMediaNotFound
	}
	return obj, nil
}

// MediaPaths lists stored media paths, sorted
func (s *Store) MediaPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.media))
	for p := range s.media {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
