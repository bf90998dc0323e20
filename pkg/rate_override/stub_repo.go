package rate_override

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]RateOverride
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]RateOverride{}}
}

func (s *StubRepo) Store(ctx context.Context, tenantId int, override RateOverride) (int, error) {
	s.nextId++
	override.ID = s.nextId
	s.data[override.ID] = override
	return override.ID, nil
}

func (s *StubRepo) GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]RateOverride, error) {
	overrides := make([]RateOverride, 0, 10)
	for _, override := range s.data {
		if override.ProjectID == projectId {
			overrides = append(overrides, override)
		}
	}
	return overrides, nil
}

func (s *StubRepo) Update(ctx context.Context, tenantId int, override RateOverride) (bool, error) {
	if _, ok := s.data[override.ID]; !ok {
		return false, nil
	}
	s.data[override.ID] = override
	return true, nil
}

func (s *StubRepo) Delete(ctx context.Context, tenantId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]RateOverride{}
}
