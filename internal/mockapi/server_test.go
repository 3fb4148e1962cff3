package mockapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/auth"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/mockapi"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/notification"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/session"
)

type harness struct {
	srv     *httptest.Server
	backend *mockapi.Server
	session *session.Store
	client  *api.Client
	auth    auth.Service
	feed    feed.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := mockapi.NewStore()
	store.SetHashCost(bcrypt.MinCost)
	if err := mockapi.Seed(store); err != nil {
		t.Fatalf("Seed() = %v", err)
	}
	backend := mockapi.New(mockapi.Options{Store: store, PageSize: 10})
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	sess := session.NewStore(&session.MemoryTokenStore{})
	client, err := api.NewClient(api.Options{BaseURL: srv.URL, Session: sess})
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	return &harness{
		srv:     srv,
		backend: backend,
		session: sess,
		client:  client,
		auth:    auth.NewService(auth.NewHTTPRepository(client), sess),
		feed:    feed.NewService(feed.NewHTTPRepository(client), nil, 0, sess),
	}
}

func (h *harness) login(t *testing.T, username string) *session.User {
	t.Helper()
	u, err := h.auth.Login(context.Background(), &auth.LoginRequest{Username: username, Password: mockapi.SeedPassword})
	if err != nil {
		t.Fatalf("Login(%s) = %v", username, err)
	}
	return u
}

func TestFeedEndToEnd(t *testing.T) {
	h := newHarness(t)
	amy := h.login(t, "amy")
	ctx := context.Background()

	pager := h.feed.Feed()
	if err := pager.FetchAll(ctx, 0); err != nil {
		t.Fatalf("FetchAll() = %v", err)
	}
	items := pager.Items()
	if len(items) != 24 {
		t.Fatalf("len(Items()) = %d, want 24 originals", len(items))
	}
	for _, p := range items {
		if p.IsRepost {
			t.Fatalf("repost %d in feed", p.ID)
		}
	}
	if len(pager.Pages()) != 4 {
		t.Fatalf("pages = %d, want 4", len(pager.Pages()))
	}

	newest := items[0]
	reposts := h.feed.Reposts(newest.ThreadID(), true)
	if err := reposts.FetchAll(ctx, 0); err != nil {
		t.Fatalf("Reposts FetchAll() = %v", err)
	}
	pings := reposts.Items()
	if len(pings) != 5 {
		t.Fatalf("reposts = %d, want 5", len(pings))
	}

	summary := feed.SummarizePings(newest.TotalReposts, pings, amy.ID)
	if !summary.IncludesViewer || summary.Count != 4 || len(summary.Avatars) != 3 {
		t.Fatalf("SummarizePings() = %+v", summary)
	}
	for _, a := range summary.Avatars {
		if a.UserID == amy.ID {
			t.Fatalf("viewer avatar in stack")
		}
	}
	if imgs := feed.RepostImages(pings); len(imgs) == 0 || len(imgs) > 3 {
		t.Fatalf("RepostImages() = %v", imgs)
	}
}

func TestLikeRepostDeleteAndNotifications(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "ben")

	// the newest page is all reposts, so it filters down to nothing
	pager := h.feed.Feed()
	if err := pager.FetchNext(ctx); err != nil {
		t.Fatalf("FetchNext() = %v", err)
	}
	if n := len(pager.Items()); n != 0 {
		t.Fatalf("first page kept %d posts, want 0", n)
	}
	if err := pager.FetchAll(ctx, 0); err != nil {
		t.Fatalf("FetchAll() = %v", err)
	}
	var target feed.Post
	for _, p := range pager.Items() {
		if p.User.Username == "amy" {
			target = p
			break
		}
	}
	if target.ID == 0 {
		t.Fatalf("no post by amy in the feed")
	}

	liked, err := h.feed.ToggleLike(ctx, target, nil)
	if err != nil || !liked.IsLiked || liked.TotalLikes != target.TotalLikes+1 {
		t.Fatalf("ToggleLike() = (%+v, %v)", liked, err)
	}

	repost, err := h.feed.CreateRepost(ctx, &feed.CreateRepostRequest{
		Thread:  target.ThreadID(),
		Content: "so true",
		Images: []feed.Attachment{{
			Name:     "reaction.png",
			MimeType: "image/png",
			Open:     func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("png")), nil },
		}},
	})
	if err != nil {
		t.Fatalf("CreateRepost() = %v", err)
	}
	if !repost.IsRepost || repost.ThreadID() != target.ThreadID() || len(repost.Images) != 1 {
		t.Fatalf("CreateRepost() = %+v", repost)
	}
	if !strings.HasPrefix(repost.Images[0].File, h.srv.URL+"/media/posts/") {
		t.Fatalf("image url = %q", repost.Images[0].File)
	}

	// only the author may delete
	h.session.Logout()
	h.login(t, "amy")
	err = h.feed.Delete(ctx, repost.ID)
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("Delete(other's post) = %v, want 403", err)
	}

	notes := notification.NewService(notification.NewHTTPRepository(h.client)).List()
	if err := notes.FetchNext(ctx); err != nil {
		t.Fatalf("notifications FetchNext() = %v", err)
	}
	var sawLike, sawRepost bool
	for _, n := range notes.Items() {
		sawLike = sawLike || (n.Type == notification.TypeLike && n.Actor.Username == "ben")
		sawRepost = sawRepost || (n.Type == notification.TypeRepost && n.Actor.Username == "ben")
	}
	if !sawLike || !sawRepost {
		t.Fatalf("notifications = %+v", notes.Items())
	}

	h.session.Logout()
	h.login(t, "ben")
	if err := h.feed.Delete(ctx, repost.ID); err != nil {
		t.Fatalf("Delete(own repost) = %v", err)
	}
	if err := h.feed.Delete(ctx, repost.ID); !errors.Is(err, feed.ErrPostNotFound) {
		t.Fatalf("Delete(again) = %v, want ErrPostNotFound", err)
	}
}

func TestMediaResolvesThroughSignedRedirect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	resolver := media.NewResolver(h.client.Host(), h.session, h.client, 2)

	h.login(t, "cal")
	pager := h.feed.Feed()
	if err := pager.FetchAll(ctx, 0); err != nil {
		t.Fatalf("FetchAll() = %v", err)
	}

	var backendURL, foreignURL string
	for _, p := range pager.Items() {
		for _, img := range p.Images {
			u, _ := url.Parse(img.File)
			if u.Host == h.client.Host() && backendURL == "" {
				backendURL = img.File
			} else if u.Host != h.client.Host() && foreignURL == "" {
				foreignURL = img.File
			}
		}
	}
	if backendURL == "" || foreignURL == "" {
		t.Fatalf("seed lacks backend (%q) or foreign (%q) media", backendURL, foreignURL)
	}

	res, err := resolver.Resolve(ctx, foreignURL)
	if err != nil || res.URL != foreignURL {
		t.Fatalf("Resolve(foreign) = (%+v, %v)", res, err)
	}

	res, err = resolver.Resolve(ctx, backendURL)
	if err != nil || res.Pending {
		t.Fatalf("Resolve(backend) = (%+v, %v)", res, err)
	}
	if !strings.Contains(res.URL, "/storage/") || !strings.Contains(res.URL, "signature=") {
		t.Fatalf("resolved url = %q, want signed storage url", res.URL)
	}

	// the resolved URL works without any credentials
	resp, err := http.Get(res.URL)
	if err != nil {
		t.Fatalf("GET resolved = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET resolved = %d", resp.StatusCode)
	}

	// a tampered signature is refused
	resp, err = http.Get(strings.Replace(res.URL, "signature=", "signature=x", 1))
	if err != nil {
		t.Fatalf("GET tampered = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("GET tampered = %d, want 403", resp.StatusCode)
	}

	h.session.Logout()
	res, _ = resolver.Resolve(ctx, backendURL)
	if !res.Pending {
		t.Fatalf("Resolve(logged out) = %+v, want pending", res)
	}
}

func TestRevokedTokenForcesLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.login(t, "dee")

	logouts := 0
	h.session.OnLogout(func(reason string) {
		if reason == session.ReasonExpired {
			logouts++
		}
	})

	h.backend.Store().RevokeTokens(u.ID)

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			errs <- h.feed.Feed().FetchNext(ctx)
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-errs; !errors.Is(err, common.ErrUnauthorized) {
			t.Fatalf("FetchNext() = %v, want unauthorized", err)
		}
	}
	if logouts != 1 || h.session.IsAuthenticated() {
		t.Fatalf("logouts = %d, authenticated = %v", logouts, h.session.IsAuthenticated())
	}
}

func TestRegisterAndGoogleLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.Register(ctx, &auth.RegisterRequest{
		Email: "amy@risus.test", Username: "amy", Password: "longenough", ConfirmPassword: "longenough",
	})
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("Register(taken) = %v, want 400", err)
	}

	resp, err := h.auth.Register(ctx, &auth.RegisterRequest{
		Email: "zed@risus.test", Username: "zed", Password: "longenough", ConfirmPassword: "longenough",
	})
	if err != nil || resp.Key == "" {
		t.Fatalf("Register() = (%+v, %v)", resp, err)
	}
	if u := h.session.User(); u == nil || u.Username != "zed" {
		t.Fatalf("session user after register = %+v", u)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.login(t, "eve")

	resp, err := http.Get(h.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `risus_mock_requests_total{code="200",method="POST",route="/user/obtain-token/"} 1`) {
		t.Fatalf("metrics missing login request:\n%s", body)
	}
}
