package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/api"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/auth"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/cache"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/config"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/feed"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/media"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/notification"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/session"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/user"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/pkg/securestore"
)

const usage = `usage: risus <command> [flags]

commands:
  login          sign in with username/password or a Google id token
  register       create an account and sign in
  logout         end the session
  whoami         show the signed-in profile
  profile        edit display name, bio or avatar
  feed           list original posts
  pings <id>     show who re-shared a thread
  like <id>      toggle a like
  repost <id>    re-share a thread
  delete <id>    delete one of your posts
  notifications  list notifications
  resolve <url>  resolve a media URL for display
`

// app holds every wired service a command may need
type app struct {
	cfg           *config.Config
	session       *session.Store
	client        *api.Client
	resolver      *media.Resolver
	auth          auth.Service
	users         user.Service
	feed          feed.Service
	notifications notification.Service
	out           io.Writer

	closers []func() error
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration error:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatal("❌ Startup failed:", err)
	}
	defer a.close()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		a.close()
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			os.Exit(2)
		}
		log.Fatalf("❌ %s: %v", os.Args[1], err)
	}
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, out: out}

	secure, err := securestore.Open(cfg.SecureStorePath, cfg.SecureStoreKey)
	if err != nil {
		return nil, fmt.Errorf("failed to open secure store: %w", err)
	}
	a.session = session.NewStore(session.NewSecureTokenStore(secure))
	a.session.OnLogout(func(reason string) {
		if reason == session.ReasonExpired {
			log.Printf("🔒 Session expired, please log in again")
		}
	})
	if err := a.session.Hydrate(ctx); err != nil {
		log.Printf("⚠️  Could not restore session: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := api.NewMetrics(registry)
	if cfg.MetricsAddr != "" {
		a.serveMetrics(registry)
	}

	transport := http.DefaultTransport
	if cfg.ZipkinURL != "" {
		traced, flush, err := api.NewTracingTransport(cfg.ZipkinURL, "risus-cli", transport)
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		transport = traced
		a.closers = append(a.closers, flush)
	}

	a.client, err = api.NewClient(api.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
		Session:   a.session,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	store, err := cache.NewFromURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.resolver = media.NewResolver(a.client.Host(), a.session, a.client, cfg.MediaPrefetchConcurrency)
	a.auth = auth.NewService(auth.NewHTTPRepository(a.client), a.session)
	a.users = user.NewService(user.NewHTTPRepository(a.client), a.session)
	a.feed = feed.NewService(feed.NewHTTPRepository(a.client), store, cfg.FeedCacheTTL, a.session)
	a.notifications = notification.NewService(notification.NewHTTPRepository(a.client))

	a.session.OnLogout(func(string) {
		if err := a.feed.ForgetCached(context.Background()); err != nil {
			log.Printf("⚠️  %v", err)
		}
	})
	a.restoreUser(ctx)
	return a, nil
}

// restoreUser loads the profile behind a hydrated token so the viewer is known from the start
func (a *app) restoreUser(ctx context.Context) {
	if !a.session.IsAuthenticated() || a.session.User() != nil {
		return
	}
	if _, err := a.users.Current(ctx); err != nil {
		log.Printf("⚠️  Could not load profile: %v", err)
	}
}

func (a *app) serveMetrics(registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️  Metrics server stopped: %v", err)
		}
	}()
	a.closers = append(a.closers, srv.Close)
	log.Printf("📈 Metrics on http://%s/metrics", a.cfg.MetricsAddr)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("⚠️  Shutdown: %v", err)
		}
	}
	a.closers = nil
}
