package requestctx

import (
	"context"
	"testing"

	"go.uber.org/zap"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

func TestSessionDefaultsToAnonymous(t *testing.T) {
	if _, ok := Session(context.Background()).(domain.Anonymous); !ok {
		t.Fatal("expected anonymous session on a bare context")
	}
	if SessionUserID(WithSession(context.Background(), nil)) != "" {
		t.Fatal("expected nil session to be stored as anonymous")
	}

	ctx := WithSession(context.Background(), domain.SignedIn{User: domain.User{ID: "user-1"}})
	if got := SessionUserID(ctx); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
}

func TestLoggerAndTraceAreIndependent(t *testing.T) {
	if Logger(context.Background()) != NoopLogger() {
		t.Fatal("expected noop logger fallback")
	}
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	ctx = WithTrace(ctx, TraceInfo{TraceID: "abc"})

	if Logger(ctx) != logger {
		t.Fatal("expected stored logger")
	}
	if TraceID(ctx) != "abc" {
		t.Fatalf("expected trace id abc, got %q", TraceID(ctx))
	}
	if _, ok := Trace(context.Background()); ok {
		t.Fatal("expected no trace on a bare context")
	}
}
