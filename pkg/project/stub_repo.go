package project

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]Project
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]Project{}}
}

func (s *StubRepo) Store(ctx context.Context, tenantId int, project Project) (int, error) {
	s.nextId++
	project.Id = s.nextId
	s.data[project.Id] = project
	return project.Id, nil
}

func (s *StubRepo) Get(ctx context.Context, tenantId int, id int) (Project, error) {
	p, ok := s.data[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (s *StubRepo) GetAll(ctx context.Context, tenantId int) ([]Project, error) {
	projects := make([]Project, 0, len(s.data))
	for _, p := range s.data {
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *StubRepo) Exists(ctx context.Context, tenantId int, id int) (bool, error) {
	_, ok := s.data[id]
	return ok, nil
}

func (s *StubRepo) Update(ctx context.Context, tenantId int, project Project) (bool, error) {
	if _, ok := s.data[project.Id]; !ok {
		return false, nil
	}
	s.data[project.Id] = project
	return true, nil
}

func (s *StubRepo) Delete(ctx context.Context, tenantId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}
