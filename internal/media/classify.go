package media

import "strings"

// Type is the coarse kind of a media item
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
)

var (
	videoExtensions = []string{".mp4", ".mov", ".avi", ".wmv", ".flv", ".webm", ".mkv", ".m4v", ".3gp"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg", ".avif", ".heic"}
	videoHosts      = []string{"youtube.com", "youtu.be", "vimeo.com", "dailymotion.com"}
)

// Classify decides whether uri points at an image or a video.
// Extensions are matched as substrings of the lower-cased uri, not as suffixes.
func Classify(uri string) Type {
	lower := strings.ToLower(uri)
	if containsAny(lower, videoExtensions) {
		return TypeVideo
	}
	if containsAny(lower, imageExtensions) {
		return TypeImage
	}
	if containsAny(lower, videoHosts) {
		return TypeVideo
	}
	return TypeImage
}

// IsVideo reports whether uri classifies as video
func IsVideo(uri string) bool { return Classify(uri) == TypeVideo }

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
