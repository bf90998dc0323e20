package app

import (
	"database/sql"

	"github.com/hourglass-hq/hourglass/internal/config"
	"github.com/hourglass-hq/hourglass/internal/utils"
	"github.com/hourglass-hq/hourglass/pkg/estimate"
	"github.com/hourglass-hq/hourglass/pkg/project"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/rate_override"
	"github.com/hourglass-hq/hourglass/pkg/rate_schedule"
	"github.com/hourglass-hq/hourglass/pkg/recalc"
	"github.com/hourglass-hq/hourglass/pkg/staff"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	"github.com/hourglass-hq/hourglass/pkg/time_entry"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	TenantService tenant.Service
	TenantHandler *tenant.Handler

	StaffService staff.Service
	StaffHandler *staff.Handler

	ProjectRepo    project.Repo
	ProjectService project.Service
	ProjectHandler *project.Handler

	RateStore    rate.Store
	RateResolver rate.Resolver

	RateOverrideService rate_override.Service
	RateOverrideHandler *rate_override.Handler

	RateScheduleService rate_schedule.Service
	RateScheduleHandler *rate_schedule.Handler

	TimeEntryRepo    time_entry.Repo
	TimeEntryService time_entry.Service
	TimeEntryHandler *time_entry.Handler

	EstimateRepo    estimate.Repo
	EstimateService estimate.Service
	EstimateHandler *estimate.Handler

	RecalcEngine  recalc.Engine
	RecalcHandler *recalc.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.TenantService = tenant.NewService(tenant.NewRepo(db))
	deps.TenantHandler = tenant.NewHandler(deps.TenantService)

	deps.StaffService = staff.NewService(staff.NewRepo(db))
	deps.StaffHandler = staff.NewHandler(deps.StaffService)

	deps.ProjectRepo = project.NewRepo(db)
	deps.ProjectService = project.NewService(deps.ProjectRepo)
	deps.ProjectHandler = project.NewHandler(deps.ProjectService)

	deps.RateStore = rate.NewStore(db)
	deps.RateResolver = rate.NewResolver(deps.RateStore)

	deps.RateOverrideService = rate_override.NewService(rate_override.NewRepo(db))
	deps.RateOverrideHandler = rate_override.NewHandler(deps.RateOverrideService)

	deps.RateScheduleService = rate_schedule.NewService(rate_schedule.NewRepo(db))
	deps.RateScheduleHandler = rate_schedule.NewHandler(deps.RateScheduleService)

	deps.TimeEntryRepo = time_entry.NewRepo(db)
	deps.TimeEntryService = time_entry.NewService(deps.TimeEntryRepo, deps.RateResolver)
	deps.TimeEntryHandler = time_entry.NewHandler(deps.TimeEntryService)

	deps.EstimateRepo = estimate.NewRepo(db)
	deps.EstimateService = estimate.NewService(deps.EstimateRepo, deps.RateResolver)
	deps.EstimateHandler = estimate.NewHandler(deps.EstimateService)

	deps.Clock = &utils.SystemClock{}

	deps.RecalcEngine = recalc.NewEngine(
		deps.TimeEntryRepo,
		deps.EstimateRepo,
		deps.ProjectRepo,
		deps.RateResolver,
		recalc.NewLockPolicy(cfg.Recalc),
	)
	deps.RecalcHandler = recalc.NewHandler(deps.RecalcEngine, deps.RateResolver, deps.Clock)

	return deps
}
