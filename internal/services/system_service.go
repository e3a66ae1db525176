package services

import (
	"context"
	"errors"
	"time"

	"github.com/Noore22/Cake-Craft/internal/catalog"
	domain "github.com/Noore22/Cake-Craft/internal/domain"
	"github.com/Noore22/Cake-Craft/internal/repositories"
)

const catalogCheckName = "catalog"

// BuildInfo captures runtime metadata exposed via health endpoints.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// SystemServiceDeps bundles collaborators required to construct a system service.
type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Catalog          *catalog.Catalog
	Clock            func() time.Time
	Build            BuildInfo
}

type systemService struct {
	healthRepo repositories.HealthRepository
	catalog    *catalog.Catalog
	clock      func() time.Time
	build      BuildInfo
}

var _ SystemService = (*systemService)(nil)

// NewSystemService assembles the service behind the health endpoints.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	utc := func() time.Time { return clock().UTC() }

	build := deps.Build
	if build.StartedAt.IsZero() {
		build.StartedAt = utc()
	}
	return &systemService{
		healthRepo: deps.HealthRepository,
		catalog:    deps.Catalog,
		clock:      utc,
		build:      build,
	}, nil
}

func (s *systemService) BuildInfo() BuildInfo { return s.build }

func (s *systemService) Uptime() time.Duration {
	return s.clock().Sub(s.build.StartedAt)
}

// HealthReport combines dependency probes with the catalog check. The overall
// status is always recomputed from the checks.
func (s *systemService) HealthReport(ctx context.Context) (SystemHealthReport, error) {
	if ctx == nil {
		return SystemHealthReport{}, errors.New("system service: context is required")
	}
	collected, err := s.healthRepo.Collect(ctx)
	if err != nil {
		return SystemHealthReport{}, err
	}

	now := s.clock()
	checks := make(map[string]domain.SystemHealthCheck, len(collected.Checks)+1)
	for name, check := range collected.Checks {
		checks[name] = check
	}
	if s.catalog != nil {
		checks[catalogCheckName] = s.catalogCheck(now)
	}

	generated := collected.GeneratedAt
	if generated.IsZero() {
		generated = now
	}
	return SystemHealthReport{
		Status:      overallStatus(checks),
		Checks:      checks,
		Version:     s.build.Version,
		CommitSHA:   s.build.CommitSHA,
		Environment: s.build.Environment,
		Uptime:      now.Sub(s.build.StartedAt),
		GeneratedAt: generated.UTC(),
	}, nil
}

// catalogCheck fails when the loaded reference tables no longer validate.
func (s *systemService) catalogCheck(now time.Time) domain.SystemHealthCheck {
	check := domain.SystemHealthCheck{Status: domain.HealthStatusOK, CheckedAt: now}
	if err := s.catalog.Validate(); err != nil {
		check.Status = domain.HealthStatusError
		check.Error = err.Error()
		return check
	}
	check.Detail = "catalog loaded"
	return check
}

// overallStatus is error if any check errored, degraded if any check is not ok.
func overallStatus(checks map[string]domain.SystemHealthCheck) string {
	status := domain.HealthStatusOK
	for _, check := range checks {
		switch check.Status {
		case domain.HealthStatusError:
			return domain.HealthStatusError
		case domain.HealthStatusOK, "":
		default:
			status = domain.HealthStatusDegraded
		}
	}
	return status
}
