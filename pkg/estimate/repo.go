package estimate

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

var (
	ErrEstimateNotFound = errors.New("estimate not found")
	ErrLineItemNotFound = errors.New("estimate line item not found")
)

type Repo interface {
	Store(ctx context.Context, tenantId int, estimate Estimate) (int, error)
	Get(ctx context.Context, tenantId int, id int) (Estimate, error)
	GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]Estimate, error)
	Exists(ctx context.Context, tenantId int, id int) (bool, error)
	UpdateStatus(ctx context.Context, tenantId int, id int, status Status) (bool, error)
	Delete(ctx context.Context, tenantId int, id int) (bool, error)

	StoreLineItem(ctx context.Context, tenantId int, item LineItem) (int, error)
	GetLineItem(ctx context.Context, tenantId int, id int) (LineItem, error)
	GetLineItems(ctx context.Context, tenantId int, estimateId int) ([]LineItem, error)
	// UpdateLineItemRates rewrites a line item's rate snapshot unless its
	// estimate's status is in lockedStatuses at the moment of the write.
	UpdateLineItemRates(ctx context.Context, tenantId int, id int, update RateUpdate, lockedStatuses []string) (bool, error)
	DeleteLineItem(ctx context.Context, tenantId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, tenantId int, estimate Estimate) (int, error) {
	query := `INSERT INTO estimate (tenant_id, name, project_id, effective_date, status)
				VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		tenantId,
		estimate.Name,
		estimate.ProjectId,
		estimate.EffectiveDate.Format("2006-01-02"),
		estimate.Status,
	)
	if err != nil {
		err := fmt.Errorf("could not store estimate: %w", err)
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

func (r *RepoImpl) Get(ctx context.Context, tenantId int, id int) (Estimate, error) {
	query := `SELECT id, name, project_id, effective_date, status
				FROM estimate WHERE tenant_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, tenantId, id)
	estimate, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Estimate{}, ErrEstimateNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get estimate: %w", err)
		log.Error(err)
		return Estimate{}, err
	}
	return estimate, nil
}

func (r *RepoImpl) GetAllForProject(ctx context.Context, tenantId int, projectId int) ([]Estimate, error) {
	query := `SELECT id, name, project_id, effective_date, status
				FROM estimate WHERE tenant_id = ? AND project_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, tenantId, projectId)
	if err != nil {
		err := fmt.Errorf("could not get estimates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var estimates []Estimate
	for rows.Next() {
		estimate, err := scanEstimate(rows)
		if err != nil {
			err := fmt.Errorf("could not scan estimate: %w", err)
			log.Error(err)
			return nil, err
		}
		estimates = append(estimates, estimate)
	}
	return estimates, rows.Err()
}

func (r *RepoImpl) Exists(ctx context.Context, tenantId int, id int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM estimate WHERE tenant_id = ? AND id = ?`, tenantId, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not check estimate existence: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepoImpl) UpdateStatus(ctx context.Context, tenantId int, id int, status Status) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE estimate SET status = ? WHERE tenant_id = ? AND id = ?`, status, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not update estimate status: %w", err)
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
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM estimate WHERE tenant_id = ? AND id = ?`, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not delete estimate: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const lineItemColumns = `id, estimate_id, description, subject_kind, person_id, role_id, hours,
				billing_rate, cost_rate, manual_billing_rate, manual_cost_rate,
				billing_rate_source, cost_rate_source`

func (r *RepoImpl) StoreLineItem(ctx context.Context, tenantId int, item LineItem) (int, error) {
	query := `INSERT INTO estimate_line_item
				(tenant_id, estimate_id, description, subject_kind, person_id, role_id, hours,
				 billing_rate, cost_rate, manual_billing_rate, manual_cost_rate,
				 billing_rate_source, cost_rate_source)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		tenantId,
		item.EstimateId,
		item.Description,
		item.SubjectKind,
		nullInt(item.PersonId),
		nullInt(item.RoleId),
		item.Hours.String(),
		rate.NullDecimal(item.BillingRate),
		rate.NullDecimal(item.CostRate),
		rate.NullDecimal(item.ManualBillingRate),
		rate.NullDecimal(item.ManualCostRate),
		item.BillingRateSource,
		item.CostRateSource,
	)
	if err != nil {
		err := fmt.Errorf("could not store estimate line item: %w", err)
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

func (r *RepoImpl) GetLineItem(ctx context.Context, tenantId int, id int) (LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM estimate_line_item WHERE tenant_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, tenantId, id)
	item, err := scanLineItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return LineItem{}, ErrLineItemNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get estimate line item: %w", err)
		log.Error(err)
		return LineItem{}, err
	}
	return item, nil
}

func (r *RepoImpl) GetLineItems(ctx context.Context, tenantId int, estimateId int) ([]LineItem, error) {
	query := `SELECT ` + lineItemColumns + `
				FROM estimate_line_item WHERE tenant_id = ? AND estimate_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, tenantId, estimateId)
	if err != nil {
		err := fmt.Errorf("could not get estimate line items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			err := fmt.Errorf("could not scan estimate line item: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *RepoImpl) UpdateLineItemRates(ctx context.Context, tenantId int, id int, update RateUpdate, lockedStatuses []string) (bool, error) {
	query := `UPDATE estimate_line_item
				SET billing_rate = ?, cost_rate = ?, billing_rate_source = ?, cost_rate_source = ?
				WHERE tenant_id = ? AND id = ?`
	args := []any{
		rate.NullDecimal(update.BillingRate),
		rate.NullDecimal(update.CostRate),
		update.BillingRateSource,
		update.CostRateSource,
		tenantId,
		id,
	}
	// The estimate's status is re-checked inside the statement so a lock
	// applied after classification still holds at write time.
	if len(lockedStatuses) > 0 {
		query += ` AND estimate_id NOT IN
				(SELECT id FROM estimate WHERE tenant_id = ? AND status IN (?` +
			strings.Repeat(", ?", len(lockedStatuses)-1) + `))`
		args = append(args, tenantId)
		for _, status := range lockedStatuses {
			args = append(args, status)
		}
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not update estimate line item rates: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepoImpl) DeleteLineItem(ctx context.Context, tenantId int, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM estimate_line_item WHERE tenant_id = ? AND id = ?`, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not delete estimate line item: %w", err)
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

func scanEstimate(row rowScanner) (Estimate, error) {
	var estimate Estimate
	var effectiveDate string
	if err := row.Scan(&estimate.Id, &estimate.Name, &estimate.ProjectId, &effectiveDate, &estimate.Status); err != nil {
		return Estimate{}, err
	}
	date, err := time.Parse("2006-01-02", effectiveDate)
	if err != nil {
		return Estimate{}, fmt.Errorf("could not parse effective date: %w", err)
	}
	estimate.EffectiveDate = date
	return estimate, nil
}

func scanLineItem(row rowScanner) (LineItem, error) {
	var item LineItem
	var personId, roleId sql.NullInt64
	var hours string
	var billing, cost, manualBilling, manualCost sql.NullString
	err := row.Scan(
		&item.Id,
		&item.EstimateId,
		&item.Description,
		&item.SubjectKind,
		&personId,
		&roleId,
		&hours,
		&billing,
		&cost,
		&manualBilling,
		&manualCost,
		&item.BillingRateSource,
		&item.CostRateSource,
	)
	if err != nil {
		return LineItem{}, err
	}
	item.PersonId = int(personId.Int64)
	item.RoleId = int(roleId.Int64)
	parsed, err := decimal.NewFromString(hours)
	if err != nil {
		return LineItem{}, fmt.Errorf("could not parse hours: %w", err)
	}
	item.Hours = parsed
	if item.BillingRate, err = rate.DecimalFromNull(billing); err != nil {
		return LineItem{}, err
	}
	if item.CostRate, err = rate.DecimalFromNull(cost); err != nil {
		return LineItem{}, err
	}
	if item.ManualBillingRate, err = rate.DecimalFromNull(manualBilling); err != nil {
		return LineItem{}, err
	}
	if item.ManualCostRate, err = rate.DecimalFromNull(manualCost); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

func nullInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}
