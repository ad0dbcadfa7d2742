package tracing

import (
	"context"
	"testing"
)

func TestInitWithoutEndpointIsNoOp(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, "", "test")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected a shutdown func even when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("disabled shutdown returned error: %v", err)
	}
}
