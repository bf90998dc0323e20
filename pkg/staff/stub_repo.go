package staff

import (
	"context"
)

type StubRepo struct {
	nextId  int
	Roles   map[int]Role
	Persons map[int]Person
}

func NewStubRepo() *StubRepo {
	return &StubRepo{nextId: 0, Roles: map[int]Role{}, Persons: map[int]Person{}}
}

func (s *StubRepo) StoreRole(ctx context.Context, tenantId int, role Role) (int, error) {
	s.nextId++
	role.Id = s.nextId
	s.Roles[role.Id] = role
	return role.Id, nil
}

func (s *StubRepo) GetRoles(ctx context.Context, tenantId int) ([]Role, error) {
	roles := make([]Role, 0, len(s.Roles))
	for _, role := range s.Roles {
		roles = append(roles, role)
	}
	return roles, nil
}

func (s *StubRepo) UpdateRole(ctx context.Context, tenantId int, role Role) (bool, error) {
	if _, ok := s.Roles[role.Id]; !ok {
		return false, nil
	}
	s.Roles[role.Id] = role
	return true, nil
}

func (s *StubRepo) DeleteRole(ctx context.Context, tenantId int, id int) (bool, error) {
	if _, ok := s.Roles[id]; !ok {
		return false, nil
	}
	delete(s.Roles, id)
	return true, nil
}

func (s *StubRepo) StorePerson(ctx context.Context, tenantId int, person Person) (int, error) {
	s.nextId++
	person.Id = s.nextId
	s.Persons[person.Id] = person
	return person.Id, nil
}

func (s *StubRepo) GetPerson(ctx context.Context, tenantId int, id int) (Person, error) {
	person, ok := s.Persons[id]
	if !ok {
		return Person{}, ErrPersonNotFound
	}
	return person, nil
}

func (s *StubRepo) GetPersons(ctx context.Context, tenantId int) ([]Person, error) {
	persons := make([]Person, 0, len(s.Persons))
	for _, person := range s.Persons {
		persons = append(persons, person)
	}
	return persons, nil
}

func (s *StubRepo) UpdatePerson(ctx context.Context, tenantId int, person Person) (bool, error) {
	if _, ok := s.Persons[person.Id]; !ok {
		return false, nil
	}
	s.Persons[person.Id] = person
	return true, nil
}

func (s *StubRepo) DeletePerson(ctx context.Context, tenantId int, id int) (bool, error) {
	if _, ok := s.Persons[id]; !ok {
		return false, nil
	}
	delete(s.Persons, id)
	return true, nil
}
