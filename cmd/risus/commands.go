package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/auth"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/notification"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/user"
)

const resolveTimeout = 10 * time.Second

var (
	errUsage       = errors.New("bad usage")
	errNotLoggedIn = errors.New("not logged in")
)

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "profile":
		return a.profile(ctx, args)
	case "feed":
		return a.listFeed(ctx, args)
	case "pings":
		return a.pings(ctx, args)
	case "like":
		return a.like(ctx, args)
	case "repost":
		return a.repost(ctx, args)
	case "delete":
		return a.deletePost(ctx, args)
	case "notifications":
		return a.listNotifications(ctx, args)
	case "resolve":
		return a.resolve(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) requireSession() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", os.Getenv("RISUS_PASSWORD"), "password (defaults to $RISUS_PASSWORD)")
	google := fs.String("google", "", "Google id token")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var err error
	if *google != "" {
		_, err = a.auth.GoogleLogin(ctx, *google)
	} else {
		_, err = a.auth.Login(ctx, &auth.LoginRequest{Username: *username, Password: *password})
	}
	if err != nil {
		return err
	}
	return a.whoami(ctx)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	req := &auth.RegisterRequest{}
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Username, "u", "", "username")
	fs.StringVar(&req.FirstName, "first", "", "first name")
	fs.StringVar(&req.LastName, "last", "", "last name")
	fs.StringVar(&req.Password, "p", os.Getenv("RISUS_PASSWORD"), "password (defaults to $RISUS_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	req.ConfirmPassword = req.Password

	resp, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", styles.ok.Render("registered"), resp.Username)
	if a.session.IsAuthenticated() {
		return a.whoami(ctx)
	}
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.auth.Logout(ctx) {
		fmt.Fprintln(a.out, styles.meta.Render("already logged out"))
		return nil
	}
	fmt.Fprintln(a.out, styles.ok.Render("logged out"))
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	p, err := a.users.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderProfile(p))
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	bio := fs.String("bio", "", "bio")
	avatar := fs.String("avatar", "", "path to a new profile image")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	req := &user.UpdateProfileRequest{}
	if *name != "" {
		req.DisplayName = name
	}
	if *bio != "" {
		req.Bio = bio
	}
	if *avatar != "" {
		src, err := captured(*avatar)
		if err != nil {
			return err
		}
		req.ProfileImage = &src
	}

	p, err := a.users.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderProfile(p))
	return nil
}

func (a *app) listFeed(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	pages := fs.Int("pages", 1, "number of pages to load")
	cached := fs.Bool("cached", false, "print the cached first page before loading")
	withPings := fs.Bool("pings", false, "load repost summaries for each post")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *cached {
		if posts, ok := a.feed.CachedFeed(ctx); ok {
			fmt.Fprintln(a.out, styles.meta.Render("cached:"))
			a.printPosts(ctx, posts, false)
		}
	}

	pager := a.feed.Feed()
	if err := pager.FetchAll(ctx, *pages); err != nil {
		return err
	}
	posts := pager.Items()
	a.prefetchMedia(ctx, posts)
	a.printPosts(ctx, posts, *withPings)
	if pager.HasNextPage() {
		fmt.Fprintln(a.out, styles.meta.Render("more posts available, use -pages"))
	}
	return nil
}

func (a *app) printPosts(ctx context.Context, posts []feed.Post, withPings bool) {
	if len(posts) == 0 {
		fmt.Fprintln(a.out, styles.meta.Render("nothing to show on this page"))
		return
	}
	for _, p := range posts {
		var summary *feed.PingSummary
		if withPings && p.TotalReposts > 0 {
			if s, err := a.summarize(ctx, p.ThreadID(), p.TotalReposts); err == nil {
				summary = &s
			}
		}
		fmt.Fprintln(a.out, renderPost(p, summary))
	}
}

// prefetchMedia warms the resolver for every backend image on screen
func (a *app) prefetchMedia(ctx context.Context, posts []feed.Post) {
	var urls []string
	for _, p := range posts {
		for _, img := range p.Images {
			urls = append(urls, img.File)
		}
		if p.User.ProfileImage != nil {
			urls = append(urls, *p.User.ProfileImage)
		}
	}
	if err := a.resolver.Prefetch(ctx, urls); err != nil {
		fmt.Fprintln(a.out, styles.warn.Render("some media could not be resolved: "+err.Error()))
	}
}

func (a *app) summarize(ctx context.Context, thread int64, total int) (feed.PingSummary, error) {
	pager := a.feed.Reposts(thread, true)
	if err := pager.FetchAll(ctx, 0); err != nil {
		return feed.PingSummary{}, err
	}
	return feed.SummarizePings(total, pager.Items(), a.session.UserID()), nil
}

func (a *app) pings(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	thread, err := idArg(args)
	if err != nil {
		return err
	}

	pager := a.feed.Reposts(thread, true)
	if err := pager.FetchAll(ctx, 0); err != nil {
		return err
	}
	reposts := pager.Items()
	origin, err := a.findPost(ctx, thread)
	if err != nil && !errors.Is(err, feed.ErrPostNotFound) {
		return err
	}
	summary := feed.SummarizePings(pingTotal(origin, reposts), reposts, a.session.UserID())

	fmt.Fprintln(a.out, renderPings(thread, summary, feed.RepostImages(reposts)))
	for _, p := range reposts {
		fmt.Fprintln(a.out, renderPost(p, nil))
	}
	return nil
}

// pingTotal prefers the origin's server count. Without the origin, the fully paged
// reposts are the whole list, so their length is the same number.
func pingTotal(origin *feed.Post, reposts []feed.Post) int {
	if origin != nil {
		return origin.TotalReposts
	}
	return len(reposts)
}

func (a *app) like(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := idArg(args)
	if err != nil {
		return err
	}
	post, err := a.findPost(ctx, id)
	if err != nil {
		return err
	}

	updated, err := a.feed.ToggleLike(ctx, *post, func(p feed.Post) {
		fmt.Fprintln(a.out, styles.meta.Render(likeLine(p)))
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, styles.ok.Render(likeLine(updated)))
	return nil
}

// findPost looks for id among the first few feed pages
func (a *app) findPost(ctx context.Context, id int64) (*feed.Post, error) {
	pager := a.feed.Feed()
	if err := pager.FetchAll(ctx, 5); err != nil {
		return nil, err
	}
	for _, p := range pager.Items() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %d is not in your recent feed", feed.ErrPostNotFound, id)
}

func (a *app) repost(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("repost", flag.ContinueOnError)
	content := fs.String("m", "", "message")
	var images multiFlag
	fs.Var(&images, "image", "image to attach (repeatable)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	thread, err := idArg(fs.Args())
	if err != nil {
		return err
	}

	req := &feed.CreateRepostRequest{Thread: thread, Content: *content}
	for _, path := range images {
		src, err := captured(path)
		if err != nil {
			return err
		}
		req.Images = append(req.Images, feed.Attachment{Name: src.Name, MimeType: src.MimeType, Open: src.Open})
	}

	post, err := a.feed.CreateRepost(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderPost(*post, nil))
	return nil
}

func (a *app) deletePost(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.feed.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, styles.ok.Render(fmt.Sprintf("deleted %d", id)))
	return nil
}

func (a *app) listNotifications(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	pages := fs.Int("pages", 1, "number of pages to load")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	pager := a.notifications.List()
	if err := pager.FetchAll(ctx, *pages); err != nil {
		return err
	}
	items := pager.Items()
	fmt.Fprintln(a.out, styles.title.Render(fmt.Sprintf("%d unread", notification.UnreadCount(items))))
	for _, n := range items {
		fmt.Fprintln(a.out, renderNotification(n))
	}
	return nil
}

// resolve waits for credentials if needed, then checks the resolved URL actually loads
func (a *app) resolve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	var state media.LoadState
	state.OnLoadStart()
	final, err := a.resolver.Await(ctx, args[0])
	if err == nil {
		err = headCheck(ctx, final)
	}
	if err != nil {
		state.OnError()
	} else {
		state.OnLoad()
	}
	state.OnLoadEnd()

	fmt.Fprintln(a.out, renderResolution(args[0], final, media.Classify(args[0]), state.Phase()))
	return err
}

func headCheck(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("media answered %s", resp.Status)
	}
	return nil
}

func captured(path string) (media.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return media.Source{}, err
	}
	return media.FromCapture(path, 0, 0, info.Size()), nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a post id", errUsage, args[0])
	}
	return id, nil
}

type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
