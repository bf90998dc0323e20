package time_entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrEntryNotFound = errors.New("time entry not found")

type RateUpdate struct {
	BillingRate       *decimal.Decimal
	CostRate          *decimal.Decimal
	BillingRateSource rate.Tier
	CostRateSource    rate.Tier
}

type Repo interface {
	Store(ctx context.Context, tenantId int, entry TimeEntry) (int, error)
	Get(ctx context.Context, tenantId int, id int) (TimeEntry, error)
	GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]TimeEntry, error)
	UpdateStatus(ctx context.Context, tenantId int, id int, status Status) (bool, error)
	// UpdateRates rewrites an entry's rate snapshot unless its status is in
	// lockedStatuses at the moment of the write. Returns false when the row
	// was not updated because it is locked or missing.
	UpdateRates(ctx context.Context, tenantId int, id int, update RateUpdate, lockedStatuses []string) (bool, error)
	Delete(ctx context.Context, tenantId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, tenantId int, entry TimeEntry) (int, error) {
	query := `INSERT INTO time_entry
				(tenant_id, uid, person_id, project_id, entry_date, hours, billable, description,
				 billing_rate, cost_rate, billing_rate_source, cost_rate_source, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		tenantId,
		entry.Uid,
		entry.PersonId,
		entry.ProjectId,
		entry.Date.Format("2006-01-02"),
		entry.Hours.String(),
		entry.Billable,
		entry.Description,
		rate.NullDecimal(entry.BillingRate),
		rate.NullDecimal(entry.CostRate),
		entry.BillingRateSource,
		entry.CostRateSource,
		entry.Status,
	)
	if err != nil {
		err := fmt.Errorf("could not store time entry: %w", err)
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

const entryColumns = `id, uid, person_id, project_id, entry_date, hours, billable, description,
				billing_rate, cost_rate, billing_rate_source, cost_rate_source, status`

func (r *RepoImpl) Get(ctx context.Context, tenantId int, id int) (TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entry WHERE tenant_id = ? AND id = ?"
	row := r.db.QueryRowContext(ctx, query, tenantId, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TimeEntry{}, ErrEntryNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get time entry: %w", err)
		log.Error(err)
		return TimeEntry{}, err
	}
	return entry, nil
}

func (r *RepoImpl) GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entry WHERE tenant_id = ? AND project_id = ? ORDER BY entry_date, id"
	rows, err := r.db.QueryContext(ctx, query, tenantId, projectId)
	if err != nil {
		err := fmt.Errorf("could not query time entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]TimeEntry, 0, 100)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			err := fmt.Errorf("could not scan time entry: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return entries, nil
}

func (r *RepoImpl) UpdateStatus(ctx context.Context, tenantId int, id int, status Status) (bool, error) {
	query := "UPDATE time_entry SET status = ? WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, status, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not update time entry status: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateRates checks the lock inside the UPDATE itself so that an entry
// locked after enumeration is still skipped, not overwritten.
func (r *RepoImpl) UpdateRates(ctx context.Context, tenantId int, id int, update RateUpdate, lockedStatuses []string) (bool, error) {
	query := `UPDATE time_entry
				SET billing_rate = ?, cost_rate = ?, billing_rate_source = ?, cost_rate_source = ?
				WHERE id = ? AND tenant_id = ?`
	args := []any{
		rate.NullDecimal(update.BillingRate),
		rate.NullDecimal(update.CostRate),
		update.BillingRateSource,
		update.CostRateSource,
		id,
		tenantId,
	}
	if len(lockedStatuses) > 0 {
		query += " AND status NOT IN (?" + strings.Repeat(", ?", len(lockedStatuses)-1) + ")"
		for _, status := range lockedStatuses {
			args = append(args, status)
		}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not update time entry rates: %w", err)
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
	query := "DELETE FROM time_entry WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete time entry: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (TimeEntry, error) {
	var entry TimeEntry
	var billing, cost sql.NullString
	var entryDate, hours string
	if err := row.Scan(&entry.Id, &entry.Uid, &entry.PersonId, &entry.ProjectId, &entryDate, &hours,
		&entry.Billable, &entry.Description, &billing, &cost,
		&entry.BillingRateSource, &entry.CostRateSource, &entry.Status); err != nil {
		return TimeEntry{}, err
	}

	var err error
	if entry.Date, err = time.Parse("2006-01-02", entryDate); err != nil {
		return TimeEntry{}, fmt.Errorf("could not parse entry date from database: %w", err)
	}
	if entry.Hours, err = decimal.NewFromString(hours); err != nil {
		return TimeEntry{}, fmt.Errorf("could not parse hours from database: %w", err)
	}
	if entry.BillingRate, err = rate.DecimalFromNull(billing); err != nil {
		return TimeEntry{}, err
	}
	if entry.CostRate, err = rate.DecimalFromNull(cost); err != nil {
		return TimeEntry{}, err
	}
	return entry, nil
}
