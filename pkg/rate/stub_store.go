package rate

import (
	"context"
)

// StubStore is an in-memory Store for tests.
type StubStore struct {
	ProjectOverridesByProject map[int][]Override
	SchedulesByPerson         map[int][]Override
	DefaultsByPerson          map[int]Defaults
	RoleByPerson              map[int]int
	DefaultsByRole            map[int]Defaults
}

func NewStubStore() *StubStore {
	return &StubStore{
		ProjectOverridesByProject: map[int][]Override{},
		SchedulesByPerson:         map[int][]Override{},
		DefaultsByPerson:          map[int]Defaults{},
		RoleByPerson:              map[int]int{},
		DefaultsByRole:            map[int]Defaults{},
	}
}

func (s *StubStore) ProjectOverrides(ctx context.Context, tenantId int, projectId int, subject Subject) ([]Override, error) {
	matching := make([]Override, 0)
	for _, o := range s.ProjectOverridesByProject[projectId] {
		if o.SubjectKind == SubjectPerson && o.SubjectId == subject.PersonId {
			matching = append(matching, o)
		}
		if o.SubjectKind == SubjectRole && subject.RoleId != 0 && o.SubjectId == subject.RoleId {
			matching = append(matching, o)
		}
	}
	return matching, nil
}

func (s *StubStore) PersonSchedules(ctx context.Context, tenantId int, personId int) ([]Override, error) {
	return s.SchedulesByPerson[personId], nil
}

func (s *StubStore) PersonDefaults(ctx context.Context, tenantId int, personId int) (Defaults, int, error) {
	return s.DefaultsByPerson[personId], s.RoleByPerson[personId], nil
}

func (s *StubStore) RoleDefaults(ctx context.Context, tenantId int, roleId int) (Defaults, error) {
	return s.DefaultsByRole[roleId], nil
}
