package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/Noore22/Cake-Craft/internal/domain"
)

func TestDependencyHealthRepositoryCollectSuccess(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "state_store", Check: func(context.Context) error { return nil }},
		{Name: "order_events", Check: func(ctx context.Context) error {
			select {
			case <-time.After(5 * time.Millisecond):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
	}, WithDependencyClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("expected ok, got %s", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(report.Checks))
	}
	if report.GeneratedAt != now {
		t.Fatalf("unexpected generatedAt %s", report.GeneratedAt)
	}
}

func TestDependencyHealthRepositoryClassifiesFailures(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "state_store", Check: func(context.Context) error { return errors.New("boom") }},
		{Name: "order_events", Check: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}
	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("expected degraded, got %s", report.Status)
	}
	if check := report.Checks["state_store"]; check.Error != "boom" {
		t.Fatalf("unexpected check %#v", check)
	}

	critical, _ := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "state_store", Critical: true, Check: func(context.Context) error { return errors.New("boom") }},
		{Name: "order_events", Check: func(context.Context) error { return errors.New("topic gone") }},
	})
	report, _ = critical.Collect(context.Background())
	if report.Status != domain.HealthStatusError {
		t.Fatalf("expected critical failure to be an error, got %s", report.Status)
	}
	if check := report.Checks["order_events"]; check.Status != domain.HealthStatusDegraded || check.Detail != "unreachable" {
		t.Fatalf("expected optional dependency degraded, got %#v", check)
	}

	slow, _ := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "state_store", Critical: true, Timeout: 10 * time.Millisecond, Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	})
	report, _ = slow.Collect(context.Background())
	if report.Status != domain.HealthStatusError || report.Checks["state_store"].Detail != "timeout" {
		t.Fatalf("expected timeout error, got %#v", report)
	}
}

func TestNewDependencyHealthRepositoryValidatesChecks(t *testing.T) {
	cases := map[string][]DependencyCheck{
		"empty":     nil,
		"no name":   {{Check: func(context.Context) error { return nil }}},
		"no func":   {{Name: "state_store"}},
		"duplicate": {{Name: "a", Check: func(context.Context) error { return nil }}, {Name: "a", Check: func(context.Context) error { return nil }}},
	}
	for name, checks := range cases {
		if _, err := NewDependencyHealthRepository(checks); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
