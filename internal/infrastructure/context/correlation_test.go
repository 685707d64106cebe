package context

import (
	"context"
	"testing"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "req-123")
	if got := GetCorrelationID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}

func TestGetCorrelationID_Missing(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
