package estimate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
)

var ErrInvalidLineItem = errors.New("invalid estimate line item")

type Service interface {
	Create(ctx context.Context, estimate Estimate) (Estimate, error)
	Get(ctx context.Context, id int) (Estimate, error)
	GetAllForProject(ctx context.Context, projectId int) ([]Estimate, error)
	UpdateStatus(ctx context.Context, id int, status Status) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)

	CreateLineItem(ctx context.Context, item LineItem) (LineItem, error)
	GetLineItems(ctx context.Context, estimateId int) ([]LineItem, error)
	DeleteLineItem(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo     Repo
	resolver rate.Resolver
}

func NewService(repo Repo, resolver rate.Resolver) *ServiceImpl {
	return &ServiceImpl{repo: repo, resolver: resolver}
}

func (s *ServiceImpl) Create(ctx context.Context, estimate Estimate) (Estimate, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if estimate.Status == "" {
		estimate.Status = StatusDraft
	}
	id, err := s.repo.Store(ctx, tenantId, estimate)
	if err != nil {
		return Estimate{}, err
	}
	estimate.Id = id
	return estimate, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Estimate, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Get(ctx, tenantId, id)
}

func (s *ServiceImpl) GetAllForProject(ctx context.Context, projectId int) ([]Estimate, error) {
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

// CreateLineItem stores a line item with its rates resolved as of the
// parent estimate's effective date. Manual rates entered on the item win
// over every other rate source.
func (s *ServiceImpl) CreateLineItem(ctx context.Context, item LineItem) (LineItem, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := validateLineItem(item); err != nil {
		return LineItem{}, err
	}
	parent, err := s.repo.Get(ctx, tenantId, item.EstimateId)
	if err != nil {
		return LineItem{}, err
	}

	subject := lineItemSubject(parent, item)
	manual := rate.ManualRates{BillingRate: item.ManualBillingRate, CostRate: item.ManualCostRate}
	resolution, err := s.resolver.ResolveWithManual(ctx, subject, manual, parent.EffectiveDate)
	if err != nil {
		return LineItem{}, fmt.Errorf("failed to resolve rates: %w", err)
	}
	item.BillingRate = resolution.BillingRate
	item.CostRate = resolution.CostRate
	item.BillingRateSource = resolution.BillingSource
	item.CostRateSource = resolution.CostSource

	id, err := s.repo.StoreLineItem(ctx, tenantId, item)
	if err != nil {
		return LineItem{}, err
	}
	item.Id = id
	return item, nil
}

func (s *ServiceImpl) GetLineItems(ctx context.Context, estimateId int) ([]LineItem, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetLineItems(ctx, tenantId, estimateId)
}

func (s *ServiceImpl) DeleteLineItem(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeleteLineItem(ctx, tenantId, id)
}

func validateLineItem(item LineItem) error {
	switch item.SubjectKind {
	case rate.SubjectPerson:
		if item.PersonId == 0 {
			return fmt.Errorf("%w: person line item requires a person id", ErrInvalidLineItem)
		}
	case rate.SubjectRole:
		if item.RoleId == 0 {
			return fmt.Errorf("%w: role line item requires a role id", ErrInvalidLineItem)
		}
	default:
		return fmt.Errorf("%w: unknown subject kind %q", ErrInvalidLineItem, item.SubjectKind)
	}
	if !item.Hours.IsPositive() {
		return fmt.Errorf("%w: hours must be positive", ErrInvalidLineItem)
	}
	return nil
}

func lineItemSubject(parent Estimate, item LineItem) rate.Subject {
	var subject rate.Subject
	if item.SubjectKind == rate.SubjectPerson {
		subject = rate.PersonSubject(item.PersonId)
	} else {
		subject = rate.RoleSubject(item.RoleId)
	}
	subject.ProjectId = parent.ProjectId
	subject.EstimateId = parent.Id
	subject.LineItemId = item.Id
	return subject
}
