package rate_schedule

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]RateSchedule
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]RateSchedule{}}
}

func (s *StubRepo) Store(ctx context.Context, tenantId int, schedule RateSchedule) (int, error) {
	s.nextId++
	schedule.ID = s.nextId
	s.data[schedule.ID] = schedule
	return schedule.ID, nil
}

func (s *StubRepo) GetAllForPerson(ctx context.Context, tenantId int, personId int) ([]RateSchedule, error) {
	schedules := make([]RateSchedule, 0, 10)
	for _, schedule := range s.data {
		if schedule.PersonID == personId {
			schedules = append(schedules, schedule)
		}
	}
	return schedules, nil
}

func (s *StubRepo) Update(ctx context.Context, tenantId int, schedule RateSchedule) (bool, error) {
	if _, ok := s.data[schedule.ID]; !ok {
		return false, nil
	}
	s.data[schedule.ID] = schedule
	return true, nil
}

func (s *StubRepo) Delete(ctx context.Context, tenantId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}
