package app

import (
	"context"
	"testing"
)

func TestNewDependencies_Memory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			t.Errorf("close: %v", closeErr)
		}
	}()

	if deps.Store != nil {
		t.Error("expected nil Store in memory mode")
	}
	if deps.Orders == nil {
		t.Error("expected Orders repository")
	}
	if deps.Outbox == nil {
		t.Error("expected Outbox repository")
	}
	if deps.Idempotency == nil {
		t.Error("expected Idempotency repository")
	}
	if deps.Users == nil || deps.Addresses == nil || deps.Catalog == nil {
		t.Error("expected mock collaborators to be initialized")
	}
	if deps.Logger == nil {
		t.Error("expected non-nil logger")
	}
}
