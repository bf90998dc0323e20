package time_entry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	Get(ctx context.Context, id int) (TimeEntry, error)
	GetAllForProject(ctx context.Context, projectId int) ([]TimeEntry, error)
	UpdateStatus(ctx context.Context, id int, status Status) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo     Repo
	resolver rate.Resolver
}

func NewService(repo Repo, resolver rate.Resolver) *ServiceImpl {
	return &ServiceImpl{repo: repo, resolver: resolver}
}

// Create stores a new entry with its rates resolved as of the entry date.
func (s *ServiceImpl) Create(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if entry.Uid == "" {
		entry.Uid = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = StatusOpen
	}

	subject := rate.PersonSubject(entry.PersonId)
	subject.ProjectId = entry.ProjectId
	resolution, err := s.resolver.Resolve(ctx, subject, entry.Date)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to resolve rates: %w", err)
	}
	entry.BillingRate = resolution.BillingRate
	entry.CostRate = resolution.CostRate
	entry.BillingRateSource = resolution.BillingSource
	entry.CostRateSource = resolution.CostSource
	if entry.Billable && resolution.BillingRate == nil {
		log.Warnf("billable time entry for person %d on project %d has no resolvable billing rate",
			entry.PersonId, entry.ProjectId)
	}

	id, err := s.repo.Store(ctx, tenantId, entry)
	if err != nil {
		return TimeEntry{}, err
	}
	entry.Id = id
	return entry, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (TimeEntry, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Get(ctx, tenantId, id)
}

func (s *ServiceImpl) GetAllForProject(ctx context.Context, projectId int) ([]TimeEntry, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAllForProject(ctx, tenantId, projectId)
}

func (s *ServiceImpl) UpdateStatus(ctx context.Context, id int, status Status) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.UpdateStatus(ctx, tenantId, id, status)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Delete(ctx, tenantId, id)
}
