package media

import "testing"

func TestLoadStateLifecycle(t *testing.T) {
	var l LoadState
	if l.Phase() != PhaseIdle || l.ShowSkeleton() {
		t.Fatalf("zero LoadState = %v", l.Snapshot())
	}

	l.OnLoadStart()
	if !l.ShowSkeleton() || l.Phase() != PhaseLoading {
		t.Fatalf("after start: %+v", l.Snapshot())
	}
	l.OnLoad()
	l.OnLoadEnd()
	if l.ShowSkeleton() || l.Phase() != PhaseLoaded {
		t.Fatalf("after load: %+v", l.Snapshot())
	}
}

func TestLoadStateErrorAndManualRetry(t *testing.T) {
	var l LoadState
	l.OnLoadStart()
	l.OnError()
	l.OnLoadEnd()
	if !l.ShowError() || l.Phase() != PhaseErrored {
		t.Fatalf("after error: %+v", l.Snapshot())
	}

	// stays errored until someone starts again
	l.OnLoadEnd()
	if !l.ShowError() {
		t.Fatalf("error cleared without a retry")
	}

	l.OnLoadStart()
	if l.ShowError() || !l.ShowSkeleton() {
		t.Fatalf("retry did not reset state: %+v", l.Snapshot())
	}
}

func TestLoadEndIndependentOfOutcome(t *testing.T) {
	var l LoadState
	l.OnLoadStart()
	l.OnLoadEnd()
	s := l.Snapshot()
	if s.Loading || s.Loaded || s.Errored {
		t.Fatalf("OnLoadEnd changed outcome: %+v", s)
	}
}
