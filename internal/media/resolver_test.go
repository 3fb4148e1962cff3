package media

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	changed chan struct{}
}

func newFakeTokens(token string) *fakeTokens {
	return &fakeTokens{token: token, changed: make(chan struct{})}
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) Changed() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changed
}

func (f *fakeTokens) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	close(f.changed)
	f.changed = make(chan struct{})
}

type fakeProber struct {
	calls int32
	final string
	err   error
}

func (p *fakeProber) Probe(_ context.Context, rawURL string) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return "", p.err
	}
	if p.final != "" {
		return p.final, nil
	}
	return rawURL + "?signed=1", nil
}

func TestResolveForeignHostUnchanged(t *testing.T) {
	prober := &fakeProber{}
	r := NewResolver("api.risus.test", newFakeTokens(""), prober, 2)

	for _, u := range []string{
		"https://lh3.googleusercontent.com/avatar.png",
		"https://api.risus.test.evil.com/a.png",
		"not a url at all",
	} {
		got, err := r.Resolve(context.Background(), u)
		if err != nil || got.URL != u || got.Pending {
			t.Fatalf("Resolve(%q) = (%+v, %v), want unchanged", u, got, err)
		}
	}
	if prober.calls != 0 {
		t.Fatalf("foreign urls were probed %d times", prober.calls)
	}
}

func TestResolveDefersWithoutToken(t *testing.T) {
	prober := &fakeProber{}
	r := NewResolver("api.risus.test", newFakeTokens(""), prober, 2)

	got, err := r.Resolve(context.Background(), "https://api.risus.test/media/a.jpg")
	if err != nil || !got.Pending {
		t.Fatalf("Resolve() = (%+v, %v), want pending", got, err)
	}
	if prober.calls != 0 {
		t.Fatalf("probe issued without a token")
	}
}

func TestResolveProbesAndCaches(t *testing.T) {
	prober := &fakeProber{final: "https://storage.risus.test/a.jpg?sig=abc"}
	tokens := newFakeTokens("tok")
	r := NewResolver("api.risus.test", tokens, prober, 2)

	for i := 0; i < 3; i++ {
		got, err := r.Resolve(context.Background(), "https://api.risus.test/media/a.jpg")
		if err != nil || got.URL != prober.final {
			t.Fatalf("Resolve() = (%+v, %v)", got, err)
		}
	}
	if prober.calls != 1 {
		t.Fatalf("probe calls = %d, want 1", prober.calls)
	}

	tokens.set("other")
	_, _ = r.Resolve(context.Background(), "https://api.risus.test/media/a.jpg")
	if prober.calls != 2 {
		t.Fatalf("probe calls after token change = %d, want 2", prober.calls)
	}
}

func TestResolveSurfacesProbeError(t *testing.T) {
	boom := errors.New("404")
	r := NewResolver("api.risus.test", newFakeTokens("tok"), &fakeProber{err: boom}, 2)
	if _, err := r.Resolve(context.Background(), "https://api.risus.test/media/gone.jpg"); !errors.Is(err, boom) {
		t.Fatalf("Resolve() = %v, want probe error", err)
	}
}

func TestAwaitWaitsForToken(t *testing.T) {
	tokens := newFakeTokens("")
	r := NewResolver("api.risus.test", tokens, &fakeProber{}, 2)

	done := make(chan string, 1)
	go func() {
		u, err := r.Await(context.Background(), "https://api.risus.test/media/a.jpg")
		if err != nil {
			t.Errorf("Await() = %v", err)
		}
		done <- u
	}()

	time.Sleep(20 * time.Millisecond)
	tokens.set("tok")

	select {
	case u := <-done:
		if u != "https://api.risus.test/media/a.jpg?signed=1" {
			t.Fatalf("Await() = %q", u)
		}
	case <-time.After(time.Second):
		t.Fatalf("Await() did not wake on token")
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	r := NewResolver("api.risus.test", newFakeTokens(""), &fakeProber{}, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.Await(ctx, "https://api.risus.test/media/a.jpg"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await() = %v, want deadline exceeded", err)
	}
}

func TestPrefetchDedupes(t *testing.T) {
	prober := &fakeProber{}
	r := NewResolver("api.risus.test", newFakeTokens("tok"), prober, 2)
	urls := []string{
		"https://api.risus.test/media/1.jpg",
		"https://api.risus.test/media/2.jpg",
		"https://api.risus.test/media/1.jpg",
		"https://cdn.elsewhere.test/3.jpg",
		"",
	}
	if err := r.Prefetch(context.Background(), urls); err != nil {
		t.Fatalf("Prefetch() = %v", err)
	}
	if prober.calls != 2 {
		t.Fatalf("probe calls = %d, want 2", prober.calls)
	}
}

// gatedProber blocks probes of one URL until released
type gatedProber struct {
	gated   string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   sync.Map
}

func (p *gatedProber) Probe(_ context.Context, rawURL string) (string, error) {
	n, _ := p.calls.LoadOrStore(rawURL, new(int32))
	atomic.AddInt32(n.(*int32), 1)
	if rawURL == p.gated {
		p.once.Do(func() { close(p.entered) })
		<-p.release
	}
	return rawURL + "?signed=1", nil
}

func (p *gatedProber) count(rawURL string) int32 {
	n, ok := p.calls.Load(rawURL)
	if !ok {
		return 0
	}
	return atomic.LoadInt32(n.(*int32))
}

func TestLateProbeKeepsNewTokenCache(t *testing.T) {
	const slow, fast = "https://api.risus.test/media/slow.jpg", "https://api.risus.test/media/fast.jpg"
	prober := &gatedProber{gated: slow, entered: make(chan struct{}), release: make(chan struct{})}
	tokens := newFakeTokens("old")
	r := NewResolver("api.risus.test", tokens, prober, 2)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, slow)
		done <- err
	}()
	<-prober.entered

	tokens.set("new")
	if _, err := r.Resolve(ctx, fast); err != nil {
		t.Fatalf("Resolve(fast) = %v", err)
	}
	close(prober.release)
	if err := <-done; err != nil {
		t.Fatalf("Resolve(slow) = %v", err)
	}

	if _, err := r.Resolve(ctx, fast); err != nil {
		t.Fatalf("Resolve(fast) again = %v", err)
	}
	if n := prober.count(fast); n != 1 {
		t.Fatalf("fast probes = %d, want 1 (cache kept across a late probe)", n)
	}
	if _, err := r.Resolve(ctx, slow); err != nil {
		t.Fatalf("Resolve(slow) again = %v", err)
	}
	if n := prober.count(slow); n != 2 {
		t.Fatalf("slow probes = %d, want 2 (old-token result not cached)", n)
	}
}
