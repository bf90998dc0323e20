package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hourglass-hq/hourglass/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateRole(ctx context.Context, role Role) (Role, error)
	GetRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, role Role) (bool, error)
	DeleteRole(ctx context.Context, id int) (bool, error)

	CreatePerson(ctx context.Context, person Person) (Person, error)
	GetPerson(ctx context.Context, id int) (Person, error)
	GetPersons(ctx context.Context) ([]Person, error)
	UpdatePerson(ctx context.Context, person Person) (bool, error)
	DeletePerson(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) CreateRole(ctx context.Context, role Role) (Role, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Role{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	id, err := s.repo.StoreRole(ctx, tenantId, role)
	if err != nil {
		return Role{}, err
	}
	role.Id = id
	return role, nil
}

func (s *ServiceImpl) GetRoles(ctx context.Context) ([]Role, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetRoles(ctx, tenantId)
}

func (s *ServiceImpl) UpdateRole(ctx context.Context, role Role) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	updated, err := s.repo.UpdateRole(ctx, tenantId, role)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("role not updated, probably because it does not exist (%d) in tenant (%d)", role.Id, tenantId)
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteRole(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeleteRole(ctx, tenantId, id)
}

func (s *ServiceImpl) CreatePerson(ctx context.Context, person Person) (Person, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Person{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if person.Uid == "" {
		person.Uid = uuid.NewString()
	}
	id, err := s.repo.StorePerson(ctx, tenantId, person)
	if err != nil {
		return Person{}, err
	}
	person.Id = id
	return person, nil
}

func (s *ServiceImpl) GetPerson(ctx context.Context, id int) (Person, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Person{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetPerson(ctx, tenantId, id)
}

func (s *ServiceImpl) GetPersons(ctx context.Context) ([]Person, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetPersons(ctx, tenantId)
}

func (s *ServiceImpl) UpdatePerson(ctx context.Context, person Person) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	updated, err := s.repo.UpdatePerson(ctx, tenantId, person)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("person not updated, probably because it does not exist (%d) in tenant (%d)", person.Id, tenantId)
	}
	return updated, nil
}

func (s *ServiceImpl) DeletePerson(ctx context.Context, id int) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeletePerson(ctx, tenantId, id)
}
