package rate_schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Store(ctx context.Context, tenantId int, schedule RateSchedule) (int, error)
	GetAllForPerson(ctx context.Context, tenantId int, personId int) ([]RateSchedule, error)
	Update(ctx context.Context, tenantId int, schedule RateSchedule) (bool, error)
	Delete(ctx context.Context, tenantId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, tenantId int, schedule RateSchedule) (int, error) {
	query := `INSERT INTO person_rate_schedule
				(tenant_id, person_id, billing_rate, cost_rate, effective_start, effective_end, notes)
				VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		tenantId,
		schedule.PersonID,
		rate.NullDecimal(schedule.BillingRate),
		rate.NullDecimal(schedule.CostRate),
		schedule.EffectiveStart.Format("2006-01-02"),
		formatEndDate(schedule.EffectiveEnd),
		schedule.Notes,
	)
	if err != nil {
		err := fmt.Errorf("could not store rate schedule: %w", err)
		log.Error(err)
		return 0, err
	}
	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(lastInsertID), nil
}

func (r *RepoImpl) GetAllForPerson(ctx context.Context, tenantId int, personId int) ([]RateSchedule, error) {
	query := `SELECT id, person_id, billing_rate, cost_rate, effective_start, effective_end, notes
				FROM person_rate_schedule WHERE tenant_id = ? AND person_id = ?
				ORDER BY effective_start DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantId, personId)
	if err != nil {
		err := fmt.Errorf("could not query rate schedules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	schedules := make([]RateSchedule, 0, 10)
	for rows.Next() {
		var schedule RateSchedule
		var billing, cost, end sql.NullString
		var start string
		if err := rows.Scan(&schedule.ID, &schedule.PersonID, &billing, &cost, &start, &end, &schedule.Notes); err != nil {
			err := fmt.Errorf("could not scan rate schedule: %w", err)
			log.Error(err)
			return nil, err
		}
		if schedule.BillingRate, err = rate.DecimalFromNull(billing); err != nil {
			log.Error(err)
			return nil, err
		}
		if schedule.CostRate, err = rate.DecimalFromNull(cost); err != nil {
			log.Error(err)
			return nil, err
		}
		if schedule.EffectiveStart, err = time.Parse("2006-01-02", start); err != nil {
			err := fmt.Errorf("could not parse effective start from database: %w", err)
			log.Error(err)
			return nil, err
		}
		if end.Valid {
			endDate, err := time.Parse("2006-01-02", end.String)
			if err != nil {
				err := fmt.Errorf("could not parse effective end from database: %w", err)
				log.Error(err)
				return nil, err
			}
			schedule.EffectiveEnd = &endDate
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return schedules, nil
}

func (r *RepoImpl) Update(ctx context.Context, tenantId int, schedule RateSchedule) (bool, error) {
	query := `UPDATE person_rate_schedule
				SET billing_rate = ?, cost_rate = ?, effective_start = ?, effective_end = ?, notes = ?
				WHERE id = ? AND tenant_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		rate.NullDecimal(schedule.BillingRate),
		rate.NullDecimal(schedule.CostRate),
		schedule.EffectiveStart.Format("2006-01-02"),
		formatEndDate(schedule.EffectiveEnd),
		schedule.Notes,
		schedule.ID,
		tenantId,
	)
	if err != nil {
		err := fmt.Errorf("could not update rate schedule: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepoImpl) Delete(ctx context.Context, tenantId int, id int) (bool, error) {
	query := "DELETE FROM person_rate_schedule WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete rate schedule: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func formatEndDate(end *time.Time) *string {
	if end == nil {
		return nil
	}
	s := end.Format("2006-01-02")
	return &s
}
