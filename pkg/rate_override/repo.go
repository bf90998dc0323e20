package rate_override

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Store(ctx context.Context, tenantId int, override RateOverride) (int, error)
	GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]RateOverride, error)
	Update(ctx context.Context, tenantId int, override RateOverride) (bool, error)
	Delete(ctx context.Context, tenantId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

// Store stores a new RateOverride together with its line item restrictions.
func (r *RepoImpl) Store(ctx context.Context, tenantId int, override RateOverride) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	defer tx.Rollback()

	query := `INSERT INTO project_rate_override
				(tenant_id, project_id, subject_kind, subject_id, billing_rate, cost_rate, effective_start, effective_end, notes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		tenantId,
		override.ProjectID,
		override.SubjectKind,
		override.SubjectID,
		rate.NullDecimal(override.BillingRate),
		rate.NullDecimal(override.CostRate),
		override.EffectiveStart.Format("2006-01-02"),
		formatEndDate(override.EffectiveEnd),
		override.Notes,
	)
	if err != nil {
		err := fmt.Errorf("could not store rate override: %w", err)
		log.Error(err)
		return 0, err
	}
	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}

	if err := r.replaceLineItems(ctx, tx, int(lastInsertID), override.LineItemIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit rate override: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(lastInsertID), nil
}

func (r *RepoImpl) GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]RateOverride, error) {
	query := `SELECT id, project_id, subject_kind, subject_id, billing_rate, cost_rate, effective_start, effective_end, notes
				FROM project_rate_override WHERE tenant_id = ? AND project_id = ?
				ORDER BY effective_start DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantId, projectId)
	if err != nil {
		err := fmt.Errorf("could not query rate overrides: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	overrides := make([]RateOverride, 0, 10)
	for rows.Next() {
		var override RateOverride
		var billing, cost, end sql.NullString
		var start string
		if err := rows.Scan(&override.ID, &override.ProjectID, &override.SubjectKind, &override.SubjectID,
			&billing, &cost, &start, &end, &override.Notes); err != nil {
			err := fmt.Errorf("could not scan rate override: %w", err)
			log.Error(err)
			return nil, err
		}
		if override.BillingRate, err = rate.DecimalFromNull(billing); err != nil {
			log.Error(err)
			return nil, err
		}
		if override.CostRate, err = rate.DecimalFromNull(cost); err != nil {
			log.Error(err)
			return nil, err
		}
		if override.EffectiveStart, err = time.Parse("2006-01-02", start); err != nil {
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
			override.EffectiveEnd = &endDate
		}
		overrides = append(overrides, override)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	for i := range overrides {
		lineItemIds, err := r.lineItems(ctx, overrides[i].ID)
		if err != nil {
			return nil, err
		}
		overrides[i].LineItemIDs = lineItemIds
	}
	return overrides, nil
}

func (r *RepoImpl) Update(ctx context.Context, tenantId int, override RateOverride) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE project_rate_override
				SET subject_kind = ?, subject_id = ?, billing_rate = ?, cost_rate = ?,
					effective_start = ?, effective_end = ?, notes = ?
				WHERE id = ? AND tenant_id = ?`
	result, err := tx.ExecContext(ctx, query,
		override.SubjectKind,
		override.SubjectID,
		rate.NullDecimal(override.BillingRate),
		rate.NullDecimal(override.CostRate),
		override.EffectiveStart.Format("2006-01-02"),
		formatEndDate(override.EffectiveEnd),
		override.Notes,
		override.ID,
		tenantId,
	)
	if err != nil {
		err := fmt.Errorf("could not update rate override: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if err := r.replaceLineItems(ctx, tx, override.ID, override.LineItemIDs); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit rate override update: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepoImpl) Delete(ctx context.Context, tenantId int, id int) (bool, error) {
	query := "DELETE FROM project_rate_override WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete rate override: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepoImpl) lineItems(ctx context.Context, overrideId int) ([]int, error) {
	query := "SELECT line_item_id FROM project_rate_override_line_item WHERE override_id = ?"
	rows, err := r.db.QueryContext(ctx, query, overrideId)
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

func (r *RepoImpl) replaceLineItems(ctx context.Context, tx *sql.Tx, overrideId int, lineItemIds []int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM project_rate_override_line_item WHERE override_id = ?", overrideId); err != nil {
		err := fmt.Errorf("could not clear line item restrictions: %w", err)
		log.Error(err)
		return err
	}
	for _, lineItemId := range lineItemIds {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO project_rate_override_line_item (override_id, line_item_id) VALUES (?, ?)",
			overrideId, lineItemId)
		if err != nil {
			err := fmt.Errorf("could not store line item restriction: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func formatEndDate(end *time.Time) *string {
	if end == nil {
		return nil
	}
	s := end.Format("2006-01-02")
	return &s
}
