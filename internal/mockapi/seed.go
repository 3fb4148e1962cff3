package mockapi

import (
	"fmt"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "risus-pass"

// SeedUsernames are the seeded accounts, in id order
var SeedUsernames = []string{"amy", "ben", "cal", "dee", "eve"}

const foreignImage = "https://images.unsplash.com/photo-1500530855697-b586d89ba3ee.jpg"

// placeholder bytes; nothing decodes them
var (
	jpegStub = []byte("\xff\xd8\xff\xe0risus-seed-image\xff\xd9")
	mp4Stub  = []byte("\x00\x00\x00\x18ftypmp42risus-seed-video")
)

// Seed fills s with accounts, posts, reposts and the notifications they cause
func Seed(s *Store) error {
	ids := make([]int64, 0, len(SeedUsernames))
	for _, name := range SeedUsernames {
		p, err := s.CreateUser(name, name+"@risus.test", SeedPassword)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", name, err)
		}
		display := "@" + name
		avatar := s.PutMedia("avatars", ".jpg", "image/jpeg", jpegStub)
		if p.ID%2 == 0 {
			avatar = foreignImage
		}
		if _, err := s.UpdateProfile(p.ID, ProfileUpdate{DisplayName: &display, ProfileImage: &avatar}); err != nil {
			return err
		}
		ids = append(ids, p.ID)
	}

	var threads []int64
	for i := 1; i <= 24; i++ {
		np := NewPost{Content: fmt.Sprintf("Post number %d", i)}
		switch {
		case i%7 == 0:
			np.Images = append(np.Images, feed.PostImage{File: s.PutMedia("posts", ".mp4", "video/mp4", mp4Stub), FileType: feed.FileTypeVideo})
		case i%4 == 0:
			np.Images = append(np.Images, feed.PostImage{File: foreignImage, FileType: feed.FileTypeImage})
		case i%3 == 0:
			for j := 0; j < 2; j++ {
				np.Images = append(np.Images, feed.PostImage{File: s.PutMedia("posts", ".jpg", "image/jpeg", jpegStub), FileType: feed.FileTypeImage})
			}
		}
		p, err := s.CreatePost(ids[i%len(ids)], np)
		if err != nil {
			return fmt.Errorf("failed to seed post %d: %w", i, err)
		}
		threads = append(threads, p.ThreadID())
	}

	// the last few threads collect pings from everyone else, amy included
	for t, thread := range threads[len(threads)-4:] {
		for k, uid := range ids {
			if k > t+1 {
				break
			}
			np := NewPost{RepostOf: thread, Content: "ping"}
			if k%2 == 0 {
				np.Images = []feed.PostImage{{File: s.PutMedia("posts", ".jpg", "image/jpeg", jpegStub), FileType: feed.FileTypeImage}}
			}
			if _, err := s.CreatePost(uid, np); err != nil {
				return fmt.Errorf("failed to seed repost: %w", err)
			}
		}
	}
	return nil
}
