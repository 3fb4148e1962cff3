package api

import (
	"fmt"
	"net/http"

	"github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/middleware/http"
	httpreporter "github.com/openzipkin/zipkin-go/reporter/http"
)

// NewTracingTransport wraps base so every backend request is reported to Zipkin.
// The returned func flushes and closes the reporter.
func NewTracingTransport(collectorURL, serviceName string, base http.RoundTripper) (http.RoundTripper, func() error, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	reporter := httpreporter.NewReporter(collectorURL)

	endpoint, err := zipkin.NewEndpoint(serviceName, "")
	if err != nil {
		reporter.Close()
		return nil, nil, fmt.Errorf("unable to create local endpoint: %w", err)
	}
	tracer, err := zipkin.NewTracer(reporter, zipkin.WithLocalEndpoint(endpoint))
	if err != nil {
		reporter.Close()
		return nil, nil, fmt.Errorf("unable to create tracer: %w", err)
	}
	transport, err := zipkinhttp.NewTransport(tracer, zipkinhttp.RoundTripper(base))
	if err != nil {
		reporter.Close()
		return nil, nil, fmt.Errorf("unable to create transport: %w", err)
	}
	return transport, reporter.Close, nil
}
