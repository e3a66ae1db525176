package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/platform/requestctx"
)

func TestSessionServiceCurrent(t *testing.T) {
	anon := NewSessionService(User{})
	_, ok := domain.SessionUser(anon.Current(context.Background()))
	assert.False(t, ok)

	favorites := []string{"1"}
	demo := NewSessionService(User{ID: "u1", Name: "Sarah Johnson", Email: "sarah@example.com", Favorites: favorites})
	favorites[0] = "mutated"

	user, ok := domain.SessionUser(demo.Current(context.Background()))
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, []string{"1"}, user.Favorites)

	ctx := requestctx.WithSession(context.Background(), domain.SignedIn{User: User{ID: "u2"}})
	user, ok = domain.SessionUser(anon.Current(ctx))
	require.True(t, ok)
	assert.Equal(t, "u2", user.ID)
}

type stubHealthRepository struct {
	report SystemHealthReport
	err    error
}

func (s stubHealthRepository) Collect(context.Context) (SystemHealthReport, error) {
	return s.report, s.err
}

func TestSystemServiceHealthReport(t *testing.T) {
	started := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	now := started.Add(90 * time.Minute)
	svc, err := NewSystemService(SystemServiceDeps{
		HealthRepository: stubHealthRepository{report: SystemHealthReport{
			Checks: map[string]domain.SystemHealthCheck{
				"state":  {Status: domain.HealthStatusOK},
				"events": {Status: domain.HealthStatusDegraded},
			},
		}},
		Clock: func() time.Time { return now },
		Build: BuildInfo{Version: "1.2.0", Environment: "test", StartedAt: started},
	})
	require.NoError(t, err)

	report, err := svc.HealthReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusDegraded, report.Status)
	assert.Equal(t, "1.2.0", report.Version)
	assert.Equal(t, 90*time.Minute, report.Uptime)
	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, 90*time.Minute, svc.Uptime())

	failing, err := NewSystemService(SystemServiceDeps{HealthRepository: stubHealthRepository{err: errors.New("boom")}})
	require.NoError(t, err)
	_, err = failing.HealthReport(context.Background())
	require.Error(t, err)

	_, err = NewSystemService(SystemServiceDeps{})
	require.Error(t, err)
}

func TestSystemServiceCatalogCheck(t *testing.T) {
	healthy, err := NewSystemService(SystemServiceDeps{
		HealthRepository: stubHealthRepository{},
		Catalog:          catalog.Default(),
	})
	require.NoError(t, err)
	report, err := healthy.HealthReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusOK, report.Status)
	assert.Equal(t, domain.HealthStatusOK, report.Checks["catalog"].Status)

	broken := catalog.Default()
	broken.Bases = nil
	failing, err := NewSystemService(SystemServiceDeps{
		HealthRepository: stubHealthRepository{},
		Catalog:          broken,
	})
	require.NoError(t, err)
	report, err = failing.HealthReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusError, report.Status)
	assert.NotEmpty(t, report.Checks["catalog"].Error)
}
