package feed

import (
	"strconv"
	"strings"
)

const (
	maxRepostImages = 3
	maxAvatars      = 3
	avatarOverlap   = -8
)

// RepostImages collects up to three distinct image URLs across reposts, in order
func RepostImages(reposts []Post) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, p := range reposts {
		for _, img := range p.Images {
			if img.FileType != FileTypeImage || img.File == "" || seen[img.File] {
				continue
			}
			seen[img.File] = true
			urls = append(urls, img.File)
			if len(urls) == maxRepostImages {
				return urls
			}
		}
	}
	return urls
}

// AvatarSlot is one avatar in the overlapping stack next to a ping count
type AvatarSlot struct {
	UserID  int64
	URL     string
	ZIndex  int
	OffsetX int
}

// PingSummary is what a post shows for its reposts
type PingSummary struct {
	Count          int
	Label          string
	Visible        bool
	IncludesViewer bool
	Avatars        []AvatarSlot
}

// SummarizePings derives the displayed ping count and avatar stack. The viewer's own
// repost is not counted and their avatar is not shown.
func SummarizePings(totalReposts int, reposts []Post, viewerID int64) PingSummary {
	var summary PingSummary

	seen := make(map[int64]bool)
	var others []PostUser
	for _, p := range reposts {
		if viewerID != 0 && p.User.ID == viewerID {
			summary.IncludesViewer = true
			continue
		}
		if seen[p.User.ID] {
			continue
		}
		seen[p.User.ID] = true
		others = append(others, p.User)
	}

	count := totalReposts
	if summary.IncludesViewer {
		count--
	}
	if count < 0 {
		count = 0
	}
	summary.Count = count
	summary.Visible = count > 0
	if !summary.Visible {
		return summary
	}
	summary.Label = FormatPingCount(count)

	if len(others) > maxAvatars {
		others = others[:maxAvatars]
	}
	for i, u := range others {
		slot := AvatarSlot{UserID: u.ID, ZIndex: len(others) - i}
		if u.ProfileImage != nil {
			slot.URL = *u.ProfileImage
		}
		if i > 0 {
			slot.OffsetX = avatarOverlap
		}
		summary.Avatars = append(summary.Avatars, slot)
	}
	return summary
}

// FormatPingCount renders a ping count for display: 42, 100+, 1.5k, 2.5M
func FormatPingCount(n int) string {
	switch {
	case n >= 1_000_000:
		return compact(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return compact(float64(n)/1_000) + "k"
	case n >= 100:
		return "100+"
	default:
		return strconv.Itoa(n)
	}
}

func compact(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}
