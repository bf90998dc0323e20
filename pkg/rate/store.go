package rate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store supplies candidate rate records for a subject. Implementations do no
// date filtering; deciding which record is effective is the resolver's job.
// Absence of data is expressed as empty results and zero-value defaults,
// never as an error.
type Store interface {
	// ProjectOverrides returns all overrides scoped to the project that name
	// the subject's person or role.
	ProjectOverrides(ctx context.Context, tenantId int, projectId int, subject Subject) ([]Override, error)
	// PersonSchedules returns all global rate schedules for the person.
	PersonSchedules(ctx context.Context, tenantId int, personId int) ([]Override, error)
	// PersonDefaults returns the person's default rates and their role id
	// (0 when the person has no role or does not exist).
	PersonDefaults(ctx context.Context, tenantId int, personId int) (Defaults, int, error)
	// RoleDefaults returns the role's default rates.
	RoleDefaults(ctx context.Context, tenantId int, roleId int) (Defaults, error)
}

type StoreImpl struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *StoreImpl {
	return &StoreImpl{db: db}
}

func (s *StoreImpl) ProjectOverrides(ctx context.Context, tenantId int, projectId int, subject Subject) ([]Override, error) {
	query := `SELECT id, subject_kind, subject_id, billing_rate, cost_rate, effective_start, effective_end, notes
				FROM project_rate_override
				WHERE tenant_id = ? AND project_id = ? AND (`
	args := []any{tenantId, projectId}

	switch subject.Kind {
	case SubjectPerson:
		query += "(subject_kind = 'person' AND subject_id = ?)"
		args = append(args, subject.PersonId)
		if subject.RoleId != 0 {
			query += " OR (subject_kind = 'role' AND subject_id = ?)"
			args = append(args, subject.RoleId)
		}
	case SubjectRole:
		query += "(subject_kind = 'role' AND subject_id = ?)"
		args = append(args, subject.RoleId)
	default:
		return nil, fmt.Errorf("unknown subject kind: %s", subject.Kind)
	}
	query += ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query project rate overrides: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	overrides, err := scanOverrides(rows)
	if err != nil {
		return nil, err
	}

	for i := range overrides {
		lineItemIds, err := s.overrideLineItems(ctx, overrides[i].Id)
		if err != nil {
			return nil, err
		}
		overrides[i].LineItemIds = lineItemIds
	}
	return overrides, nil
}

func (s *StoreImpl) overrideLineItems(ctx context.Context, overrideId int) ([]int, error) {
	query := "SELECT line_item_id FROM project_rate_override_line_item WHERE override_id = ?"
	rows, err := s.db.QueryContext(ctx, query, overrideId)
	if err != nil {
		err := fmt.Errorf("could not query override line item restrictions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			err := fmt.Errorf("could not scan line item restriction: %w", err)
			log.Error(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *StoreImpl) PersonSchedules(ctx context.Context, tenantId int, personId int) ([]Override, error) {
	query := `SELECT id, 'person', person_id, billing_rate, cost_rate, effective_start, effective_end, notes
				FROM person_rate_schedule
				WHERE tenant_id = ? AND person_id = ?`
	rows, err := s.db.QueryContext(ctx, query, tenantId, personId)
	if err != nil {
		err := fmt.Errorf("could not query person rate schedules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	return scanOverrides(rows)
}

func (s *StoreImpl) PersonDefaults(ctx context.Context, tenantId int, personId int) (Defaults, int, error) {
	query := "SELECT default_billing_rate, default_cost_rate, role_id FROM person WHERE tenant_id = ? AND id = ?"
	var billing, cost sql.NullString
	var roleId sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, tenantId, personId).Scan(&billing, &cost, &roleId)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults{}, 0, nil
	} else if err != nil {
		err := fmt.Errorf("could not query person defaults: %w", err)
		log.Error(err)
		return Defaults{}, 0, err
	}
	defaults, err := defaultsFromNull(billing, cost)
	if err != nil {
		return Defaults{}, 0, err
	}
	return defaults, int(roleId.Int64), nil
}

func (s *StoreImpl) RoleDefaults(ctx context.Context, tenantId int, roleId int) (Defaults, error) {
	query := "SELECT default_billing_rate, default_cost_rate FROM role WHERE tenant_id = ? AND id = ?"
	var billing, cost sql.NullString
	err := s.db.QueryRowContext(ctx, query, tenantId, roleId).Scan(&billing, &cost)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults{}, nil
	} else if err != nil {
		err := fmt.Errorf("could not query role defaults: %w", err)
		log.Error(err)
		return Defaults{}, err
	}
	return defaultsFromNull(billing, cost)
}

func scanOverrides(rows *sql.Rows) ([]Override, error) {
	overrides := make([]Override, 0, 10)
	for rows.Next() {
		var o Override
		var billing, cost, end sql.NullString
		var start string
		if err := rows.Scan(&o.Id, &o.SubjectKind, &o.SubjectId, &billing, &cost, &start, &end, &o.Notes); err != nil {
			err := fmt.Errorf("could not scan rate override: %w", err)
			log.Error(err)
			return nil, err
		}

		var err error
		o.BillingRate, err = DecimalFromNull(billing)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		o.CostRate, err = DecimalFromNull(cost)
		if err != nil {
			log.Error(err)
			return nil, err
		}

		o.EffectiveStart, err = time.Parse("2006-01-02", start)
		if err != nil {
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
			o.EffectiveEnd = &endDate
		}
		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return overrides, nil
}

func defaultsFromNull(billing, cost sql.NullString) (Defaults, error) {
	var d Defaults
	var err error
	d.BillingRate, err = DecimalFromNull(billing)
	if err != nil {
		log.Error(err)
		return Defaults{}, err
	}
	d.CostRate, err = DecimalFromNull(cost)
	if err != nil {
		log.Error(err)
		return Defaults{}, err
	}
	return d, nil
}
