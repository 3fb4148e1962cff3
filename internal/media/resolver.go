package media

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Prober performs the authenticated existence/redirect check for a backend URL
type Prober interface {
	Probe(ctx context.Context, rawURL string) (string, error)
}

// TokenSource exposes the current bearer token and a wake-up for when it changes
type TokenSource interface {
	Token() string
	Changed() <-chan struct{}
}

// Resolution is the outcome of resolving one media URL.
// Pending means the URL needs credentials that are not available yet.
type Resolution struct {
	URL     string
	Pending bool
}

// Resolver turns backend media URLs into plain fetchable URLs
type Resolver struct {
	backendHost string
	tokens      TokenSource
	prober      Prober
	concurrency int

	mu         sync.Mutex
	cacheToken string
	resolved   map[string]string
}

// NewResolver creates a resolver for media served from backendHost
func NewResolver(backendHost string, tokens TokenSource, prober Prober, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Resolver{
		backendHost: backendHost,
		tokens:      tokens,
		prober:      prober,
		concurrency: concurrency,
		resolved:    make(map[string]string),
	}
}

// Resolve returns rawURL unchanged for foreign hosts, Pending for backend URLs while logged
// out, and otherwise the URL reached after an authenticated probe.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (Resolution, error) {
	if !r.isBackend(rawURL) {
		return Resolution{URL: rawURL}, nil
	}

	token := r.tokens.Token()
	if token == "" {
		return Resolution{Pending: true}, nil
	}

	if final, ok := r.cached(token, rawURL); ok {
		return Resolution{URL: final}, nil
	}

	final, err := r.prober.Probe(ctx, rawURL)
	if err != nil {
		return Resolution{}, err
	}
	if ctx.Err() != nil {
		return Resolution{}, ctx.Err()
	}
	r.store(token, rawURL, final)
	return Resolution{URL: final}, nil
}

// Await blocks until rawURL resolves, waiting for a token if needed
func (r *Resolver) Await(ctx context.Context, rawURL string) (string, error) {
	for {
		changed := r.tokens.Changed()
		res, err := r.Resolve(ctx, rawURL)
		if err != nil {
			return "", err
		}
		if !res.Pending {
			return res.URL, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-changed:
		}
	}
}

// Prefetch resolves urls ahead of display. Pending URLs are skipped; the first failure is returned.
func (r *Resolver) Prefetch(ctx context.Context, urls []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		u := u
		g.Go(func() error {
			_, err := r.Resolve(ctx, u)
			return err
		})
	}
	return g.Wait()
}

func (r *Resolver) isBackend(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host != "" && u.Host == r.backendHost
}

func (r *Resolver) cached(token, rawURL string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.cacheToken {
		return "", false
	}
	final, ok := r.resolved[rawURL]
	return final, ok
}

// resolved URLs are only valid for the credentials that produced them.
// A probe that outlived its token is dropped.
func (r *Resolver) store(token, rawURL, final string) {
	if token != r.tokens.Token() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.cacheToken {
		r.cacheToken = token
		r.resolved = make(map[string]string)
	}
	r.resolved[rawURL] = final
}
