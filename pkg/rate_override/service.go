package rate_override

import (
	"context"
	"errors"
	"fmt"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
)

var ErrInvalidOverride = errors.New("invalid rate override")

type Service interface {
	Store(ctx context.Context, override RateOverride) (RateOverride, error)
	GetAllForProject(ctx context.Context, projectId int) ([]RateOverride, error)
	Update(ctx context.Context, override RateOverride) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo}
}

func (s *ServiceImpl) Store(ctx context.Context, override RateOverride) (RateOverride, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return RateOverride{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := validate(override); err != nil {
		return RateOverride{}, err
	}
	storedId, err := s.repo.Store(ctx, tenantId, override)
	if err != nil {
		return RateOverride{}, fmt.Errorf("failed to store rate override: %w", err)
	}
	override.ID = storedId
	return override, nil
}

func (s *ServiceImpl) GetAllForProject(ctx context.Context, projectId int) ([]RateOverride, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAllForProject(ctx, tenantId, projectId)
}

func (s *ServiceImpl) Update(ctx context.Context, override RateOverride) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := validate(override); err != nil {
		return false, err
	}
	return s.repo.Update(ctx, tenantId, override)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Delete(ctx, tenantId, id)
}

func validate(override RateOverride) error {
	if override.SubjectKind != rate.SubjectPerson && override.SubjectKind != rate.SubjectRole {
		return fmt.Errorf("%w: subject kind must be person or role", ErrInvalidOverride)
	}
	if override.SubjectID == 0 {
		return fmt.Errorf("%w: subject id is required", ErrInvalidOverride)
	}
	if override.EffectiveStart.IsZero() {
		return fmt.Errorf("%w: effective start is required", ErrInvalidOverride)
	}
	if override.EffectiveEnd != nil && override.EffectiveEnd.Before(override.EffectiveStart) {
		return fmt.Errorf("%w: effective end before effective start", ErrInvalidOverride)
	}
	return nil
}
