package feed

import (
	"fmt"
	"testing"
)

func TestFormatPingCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{42, "42"},
		{99, "99"},
		{100, "100+"},
		{999, "100+"},
		{1000, "1k"},
		{1500, "1.5k"},
		{12_340, "12.3k"},
		{1_000_000, "1M"},
		{2_500_000, "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatPingCount(tt.n); got != tt.want {
			t.Errorf("FormatPingCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func author(id int64) PostUser {
	avatar := fmt.Sprintf("https://cdn.test/avatars/%d.png", id)
	return PostUser{ID: id, Username: fmt.Sprintf("user%d", id), ProfileImage: &avatar}
}

func repostBy(id int64) Post {
	thread := int64(7)
	return Post{ID: 100 + id, User: author(id), IsRepost: true, Thread: &thread}
}

func TestSummarizePingsExcludesViewer(t *testing.T) {
	const viewer = 3
	s := SummarizePings(3, []Post{repostBy(1), repostBy(2), repostBy(viewer)}, viewer)

	if s.Count != 2 || s.Label != "2" || !s.Visible || !s.IncludesViewer {
		t.Fatalf("SummarizePings() = %+v", s)
	}
	if len(s.Avatars) != 2 || s.Avatars[0].UserID != 1 || s.Avatars[1].UserID != 2 {
		t.Fatalf("Avatars = %+v, want users 1 and 2", s.Avatars)
	}
	for _, a := range s.Avatars {
		if a.UserID == viewer {
			t.Fatalf("viewer avatar shown")
		}
	}
}

func TestSummarizePingsAvatarStack(t *testing.T) {
	reposts := []Post{repostBy(1), repostBy(2), repostBy(2), repostBy(3), repostBy(4), repostBy(5)}
	s := SummarizePings(6, reposts, 99)

	if s.Count != 6 || s.IncludesViewer {
		t.Fatalf("SummarizePings() = %+v", s)
	}
	if len(s.Avatars) != 3 {
		t.Fatalf("len(Avatars) = %d, want 3", len(s.Avatars))
	}
	for i, a := range s.Avatars {
		if a.ZIndex != 3-i {
			t.Errorf("Avatars[%d].ZIndex = %d, want %d", i, a.ZIndex, 3-i)
		}
		wantOffset := avatarOverlap
		if i == 0 {
			wantOffset = 0
		}
		if a.OffsetX != wantOffset {
			t.Errorf("Avatars[%d].OffsetX = %d, want %d", i, a.OffsetX, wantOffset)
		}
	}
	if s.Avatars[2].UserID != 3 {
		t.Fatalf("duplicate author took a slot: %+v", s.Avatars)
	}
}

func TestSummarizePingsHiddenWhenOnlyViewer(t *testing.T) {
	s := SummarizePings(1, []Post{repostBy(5)}, 5)
	if s.Visible || s.Count != 0 || len(s.Avatars) != 0 || s.Label != "" {
		t.Fatalf("SummarizePings() = %+v, want hidden", s)
	}

	s = SummarizePings(0, nil, 5)
	if s.Visible {
		t.Fatalf("SummarizePings(0) visible")
	}
}

func TestSummarizePingsSubtractsViewerOnce(t *testing.T) {
	s := SummarizePings(4, []Post{repostBy(5), repostBy(5), repostBy(1)}, 5)
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
}

func TestRepostImages(t *testing.T) {
	withImages := func(files ...PostImage) Post { return Post{IsRepost: true, Images: files} }
	img := func(url string) PostImage { return PostImage{File: url, FileType: FileTypeImage} }

	reposts := []Post{
		withImages(img("a.jpg"), PostImage{File: "clip.mp4", FileType: FileTypeVideo}),
		withImages(img("a.jpg"), img("b.jpg")),
		withImages(img("c.jpg"), img("d.jpg")),
	}
	got := RepostImages(reposts)
	if fmt.Sprint(got) != "[a.jpg b.jpg c.jpg]" {
		t.Fatalf("RepostImages() = %v", got)
	}

	if got := RepostImages([]Post{withImages(PostImage{File: "v.mp4", FileType: FileTypeVideo})}); len(got) != 0 {
		t.Fatalf("RepostImages(videos) = %v, want none", got)
	}
}
