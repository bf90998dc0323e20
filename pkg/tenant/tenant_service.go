package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, t Tenant) (Tenant, error)
	GetByUid(ctx context.Context, uid string) (Tenant, error)
	GetAll(ctx context.Context) ([]Tenant, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, t Tenant) (Tenant, error) {
	if t.Uid == "" {
		t.Uid = uuid.NewString()
	}
	id, err := s.repo.Store(ctx, t)
	if err != nil {
		return Tenant{}, fmt.Errorf("failed to store tenant: %w", err)
	}
	t.Id = id
	return t, nil
}

func (s *ServiceImpl) GetByUid(ctx context.Context, uid string) (Tenant, error) {
	return s.repo.GetByUid(ctx, uid)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Tenant, error) {
	return s.repo.GetAll(ctx)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
