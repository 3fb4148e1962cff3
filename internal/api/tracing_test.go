package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestTracingTransportPropagatesAndReports(t *testing.T) {
	var reported atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reported.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer collector.Close()

	var traceID atomic.Value
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID.Store(r.Header.Get("X-B3-TraceId"))
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	transport, flush, err := NewTracingTransport(collector.URL+"/api/v2/spans", "risus-test", nil)
	if err != nil {
		t.Fatalf("NewTracingTransport() = %v", err)
	}
	c, err := NewClient(Options{BaseURL: backend.URL, Transport: transport})
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}

	var out map[string]interface{}
	if err := c.Get(context.Background(), "/feed/", nil, &out); err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if id, _ := traceID.Load().(string); id == "" {
		t.Fatalf("backend saw no X-B3-TraceId header")
	}

	if err := flush(); err != nil {
		t.Fatalf("flush() = %v", err)
	}
	if reported.Load() == 0 {
		t.Fatalf("collector received no spans")
	}
}
