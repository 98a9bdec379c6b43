package services_test

import (
	"context"
	"testing"

	"reel/internal/services"
)

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()

	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job id on empty context")
	}

	ctx = services.WithJobID(ctx, "job-1")
	ctx = services.WithPhase(ctx, "resolving")
	ctx = services.WithRequestID(ctx, "req-9")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-1" {
		t.Fatalf("expected job id, got %q ok=%v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "resolving" {
		t.Fatalf("expected phase, got %q ok=%v", phase, ok)
	}
	if id, ok := services.RequestIDFromContext(ctx); !ok || id != "req-9" {
		t.Fatalf("expected request id, got %q ok=%v", id, ok)
	}

	// empty values leave the context untouched
	if services.WithPhase(ctx, "") != ctx {
		t.Fatal("expected context to be returned unchanged for empty phase")
	}
}
