package project

import (
	"context"
	"fmt"

	"github.com/hourglass-hq/hourglass/pkg/tenant"
)

type Service interface {
	Create(ctx context.Context, project Project) (Project, error)
	Get(ctx context.Context, id int) (Project, error)
	GetAll(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, project Project) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, project Project) (Project, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if project.Status == "" {
		project.Status = StatusActive
	}
	id, err := s.repo.Store(ctx, tenantId, project)
	if err != nil {
		return Project{}, err
	}
	project.Id = id
	return project, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Project, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Get(ctx, tenantId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Project, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetAll(ctx, tenantId)
}

func (s *ServiceImpl) Update(ctx context.Context, project Project) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Update(ctx, tenantId, project)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Delete(ctx, tenantId, id)
}
