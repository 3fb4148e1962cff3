package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/notification"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/user"
)

var styles = struct {
	title  lipgloss.Style
	author lipgloss.Style
	meta   lipgloss.Style
	ping   lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	unread lipgloss.Style
}{
	title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c9d1d9")),
	author: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff")),
	meta:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")),
	ping:   lipgloss.NewStyle().Foreground(lipgloss.Color("#d2a8ff")),
	ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950")),
	warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa657")),
	unread: lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149")),
}

var notificationIcons = map[notification.NotificationType]string{
	notification.TypeFollow:  "+",
	notification.TypeLike:    "♥",
	notification.TypeComment: "✎",
	notification.TypeMention: "@",
	notification.TypeRepost:  "↻",
}

func displayName(username string, display *string) string {
	if display != nil && *display != "" {
		return *display
	}
	return "@" + username
}

func renderProfile(p *user.Profile) string {
	var b strings.Builder
	b.WriteString(styles.author.Render(displayName(p.Username, p.DisplayName)))
	b.WriteString(styles.meta.Render(fmt.Sprintf(" (@%s, id %d)", p.Username, p.ID)))
	if p.Bio != nil && *p.Bio != "" {
		b.WriteString("\n" + *p.Bio)
	}
	b.WriteString("\n" + styles.meta.Render(fmt.Sprintf("%d posts · %d followers · %d following",
		p.TotalPosts, p.Followers, p.Following)))
	return b.String()
}

// renderPost prints one post; summary is nil when reposts were not loaded
func renderPost(p feed.Post, summary *feed.PingSummary) string {
	var b strings.Builder
	header := styles.author.Render(displayName(p.User.Username, p.User.DisplayName))
	header += styles.meta.Render(fmt.Sprintf(" #%d · %s", p.ID, p.DateCreated.Format("Jan 2 15:04")))
	if p.IsRepost {
		header += styles.ping.Render(fmt.Sprintf(" ↻ thread %d", p.ThreadID()))
	}
	b.WriteString(header)

	if p.Title != nil && *p.Title != "" {
		b.WriteString("\n" + styles.title.Render(*p.Title))
	}
	if p.Content != "" {
		b.WriteString("\n" + p.Content)
	}
	for _, img := range p.Images {
		b.WriteString("\n" + styles.meta.Render(fmt.Sprintf("[%s] %s", media.Classify(img.File), img.File)))
	}

	b.WriteString("\n" + styles.meta.Render(likeLine(p)+fmt.Sprintf(" · %d comments", p.TotalComments)))
	switch {
	case summary != nil && summary.Visible:
		b.WriteString(styles.ping.Render(" · " + pingBadge(*summary)))
	case summary == nil && p.TotalReposts > 0:
		b.WriteString(styles.ping.Render(" · " + feed.FormatPingCount(p.TotalReposts) + " pings"))
	}
	return b.String() + "\n"
}

func likeLine(p feed.Post) string {
	heart := "♡"
	if p.IsLiked {
		heart = "♥"
	}
	return fmt.Sprintf("%s %d", heart, p.TotalLikes)
}

// pingBadge draws one dot per stacked avatar ahead of the count
func pingBadge(s feed.PingSummary) string {
	marks := make([]string, 0, len(s.Avatars))
	for range s.Avatars {
		marks = append(marks, "●")
	}
	badge := s.Label + " pings"
	if len(marks) > 0 {
		badge = strings.Join(marks, "") + " " + badge
	}
	return badge
}

func renderPings(thread int64, s feed.PingSummary, images []string) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Thread %d", thread)))
	if !s.Visible {
		b.WriteString(styles.meta.Render(" · no pings from others"))
	} else {
		b.WriteString(styles.ping.Render(" · " + pingBadge(s)))
	}
	if s.IncludesViewer {
		b.WriteString(styles.meta.Render(" · you pinged this"))
	}
	for _, a := range s.Avatars {
		b.WriteString("\n" + styles.meta.Render(fmt.Sprintf("  user %d z=%d x=%d %s", a.UserID, a.ZIndex, a.OffsetX, a.URL)))
	}
	for _, img := range images {
		b.WriteString("\n" + styles.meta.Render("  image "+img))
	}
	return b.String() + "\n"
}

func renderNotification(n notification.Notification) string {
	icon := notificationIcons[n.Type]
	if icon == "" {
		icon = "•"
	}
	line := fmt.Sprintf("%s %s", icon, n.Message)
	if n.Actor != nil {
		line = fmt.Sprintf("%s %s", icon, styles.author.Render(displayName(n.Actor.Username, n.Actor.DisplayName))+" "+n.Message)
	}
	stamp := styles.meta.Render(" " + n.CreatedAt.Format("Jan 2 15:04"))
	if !n.IsRead {
		return styles.unread.Render("● ") + line + stamp
	}
	return "  " + line + stamp
}

func renderResolution(raw, final string, kind media.Type, phase media.Phase) string {
	style := styles.ok
	if phase == media.PhaseErrored {
		style = styles.unread
	}
	out := fmt.Sprintf("%s %s\n", style.Render(string(phase)), styles.meta.Render(string(kind)))
	out += raw + "\n"
	if final != "" && final != raw {
		out += styles.meta.Render("→ ") + final + "\n"
	}
	return out
}
