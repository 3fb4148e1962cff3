package media

import "sync"

// Phase is the coarse state of a media load
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseErrored Phase = "errored"
)

// LoadSnapshot is a point-in-time view of a LoadState
type LoadSnapshot struct {
	Loading bool
	Loaded  bool
	Errored bool
}

// LoadState tracks one image or video load for skeleton and error placeholders.
// OnLoadEnd only clears the busy flag; it says nothing about success.
// Nothing retries on its own: a retry is another OnLoadStart.
type LoadState struct {
	mu sync.Mutex
	s  LoadSnapshot
}

func (l *LoadState) OnLoadStart() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s = LoadSnapshot{Loading: true}
}

func (l *LoadState) OnLoad() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Loaded = true
	l.s.Errored = false
}

func (l *LoadState) OnError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Errored = true
	l.s.Loaded = false
}

func (l *LoadState) OnLoadEnd() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Loading = false
}

func (l *LoadState) Snapshot() LoadSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s
}

func (l *LoadState) Phase() Phase {
	s := l.Snapshot()
	switch {
	case s.Errored:
		return PhaseErrored
	case s.Loaded:
		return PhaseLoaded
	case s.Loading:
		return PhaseLoading
	default:
		return PhaseIdle
	}
}

// ShowSkeleton reports whether a placeholder should cover the media
func (l *LoadState) ShowSkeleton() bool {
	s := l.Snapshot()
	return s.Loading && !s.Loaded && !s.Errored
}

// ShowError reports whether the failure placeholder should be shown
func (l *LoadState) ShowError() bool {
	return l.Snapshot().Errored
}
