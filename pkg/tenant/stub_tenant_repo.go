package tenant

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]Tenant
}

func NewStubRepo() *StubRepo {
	return &StubRepo{nextId: 1, data: map[int]Tenant{}}
}

func (s *StubRepo) Store(ctx context.Context, t Tenant) (int, error) {
	s.nextId++
	t.Id = s.nextId
	s.data[t.Id] = t
	return t.Id, nil
}

func (s *StubRepo) GetByUid(ctx context.Context, uid string) (Tenant, error) {
	for _, t := range s.data {
		if t.Uid == uid {
			return t, nil
		}
	}
	return Tenant{}, ErrTenantNotFound
}

func (s *StubRepo) GetAll(ctx context.Context) ([]Tenant, error) {
	tenants := make([]Tenant, 0, len(s.data))
	for _, t := range s.data {
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (s *StubRepo) Delete(ctx context.Context, id int) error {
	delete(s.data, id)
	return nil
}
