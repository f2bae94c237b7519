package telemetry

import (
	"context"
	"testing"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown, err := Init(context.Background(), "exercise-catalog")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestExporterOptionsSecureOnlyForHTTPS(t *testing.T) {
	if got := len(exporterOptions("https://collector:4318")); got != 3 {
		t.Fatalf("expected timeout, retry and endpoint options, got %d", got)
	}
	if got := len(exporterOptions("collector:4318")); got != 4 {
		t.Fatalf("expected insecure option for plain endpoint, got %d", got)
	}
}
