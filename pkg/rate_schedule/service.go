package rate_schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/hourglass-hq/hourglass/pkg/tenant"
)

var ErrInvalidSchedule = errors.New("invalid rate schedule")

type Service interface {
	Store(ctx context.Context, schedule RateSchedule) (RateSchedule, error)
	GetAllForPerson(ctx context.Context, personId int) ([]RateSchedule, error)
	Update(ctx context.Context, schedule RateSchedule) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo}
}

func (s *ServiceImpl) Store(ctx context.Context, schedule RateSchedule) (RateSchedule, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return RateSchedule{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := validate(schedule); err != nil {
		return RateSchedule{}, err
	}
	storedId, err := s.repo.Store(ctx, tenantId, schedule)
	if err != nil {
		return RateSchedule{}, fmt.Errorf("failed to store rate schedule: %w", err)
	}
	schedule.ID = storedId
	return schedule, nil
}

func (s *ServiceImpl) GetAllForPerson(ctx context.Context, personId int) ([]RateSchedule, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAllForPerson(ctx, tenantId, personId)
}

func (s *ServiceImpl) Update(ctx context.Context, schedule RateSchedule) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := validate(schedule); err != nil {
		return false, err
	}
	return s.repo.Update(ctx, tenantId, schedule)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Delete(ctx, tenantId, id)
}

func validate(schedule RateSchedule) error {
	if schedule.PersonID == 0 {
		return fmt.Errorf("%w: person id is required", ErrInvalidSchedule)
	}
	if schedule.EffectiveStart.IsZero() {
		return fmt.Errorf("%w: effective start is required", ErrInvalidSchedule)
	}
	if schedule.EffectiveEnd != nil && schedule.EffectiveEnd.Before(schedule.EffectiveStart) {
		return fmt.Errorf("%w: effective end before effective start", ErrInvalidSchedule)
	}
	return nil
}
