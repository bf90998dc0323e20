package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hourglass-hq/hourglass/pkg/rate"
	log "github.com/sirupsen/logrus"
)

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrRoleNotFound   = errors.New("role not found")
)

type Repo interface {
	StoreRole(ctx context.Context, tenantId int, role Role) (int, error)
	GetRoles(ctx context.Context, tenantId int) ([]Role, error)
	UpdateRole(ctx context.Context, tenantId int, role Role) (bool, error)
	DeleteRole(ctx context.Context, tenantId int, id int) (bool, error)

	StorePerson(ctx context.Context, tenantId int, person Person) (int, error)
	GetPerson(ctx context.Context, tenantId int, id int) (Person, error)
	GetPersons(ctx context.Context, tenantId int) ([]Person, error)
	UpdatePerson(ctx context.Context, tenantId int, person Person) (bool, error)
	DeletePerson(ctx context.Context, tenantId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) StoreRole(ctx context.Context, tenantId int, role Role) (int, error) {
	query := "INSERT INTO role (tenant_id, name, default_billing_rate, default_cost_rate) VALUES (?, ?, ?, ?)"
	result, err := r.db.ExecContext(ctx, query,
		tenantId,
		role.Name,
		rate.NullDecimal(role.DefaultBillingRate),
		rate.NullDecimal(role.DefaultCostRate),
	)
	if err != nil {
		err := fmt.Errorf("could not store role: %w", err)
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

func (r *RepoImpl) GetRoles(ctx context.Context, tenantId int) ([]Role, error) {
	query := "SELECT id, name, default_billing_rate, default_cost_rate FROM role WHERE tenant_id = ? ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query roles: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	roles := make([]Role, 0, 10)
	for rows.Next() {
		var role Role
		var billing, cost sql.NullString
		if err := rows.Scan(&role.Id, &role.Name, &billing, &cost); err != nil {
			err := fmt.Errorf("could not scan role: %w", err)
			log.Error(err)
			return nil, err
		}
		if role.DefaultBillingRate, err = rate.DecimalFromNull(billing); err != nil {
			log.Error(err)
			return nil, err
		}
		if role.DefaultCostRate, err = rate.DecimalFromNull(cost); err != nil {
			log.Error(err)
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return roles, nil
}

func (r *RepoImpl) UpdateRole(ctx context.Context, tenantId int, role Role) (bool, error) {
	query := "UPDATE role SET name = ?, default_billing_rate = ?, default_cost_rate = ? WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query,
		role.Name,
		rate.NullDecimal(role.DefaultBillingRate),
		rate.NullDecimal(role.DefaultCostRate),
		role.Id,
		tenantId,
	)
	if err != nil {
		err := fmt.Errorf("could not update role: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepoImpl) DeleteRole(ctx context.Context, tenantId int, id int) (bool, error) {
	query := "DELETE FROM role WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete role: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepoImpl) StorePerson(ctx context.Context, tenantId int, person Person) (int, error) {
	query := `INSERT INTO person (tenant_id, uid, display_name, role_id, default_billing_rate, default_cost_rate)
				VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		tenantId,
		person.Uid,
		person.DisplayName,
		nullInt(person.RoleId),
		rate.NullDecimal(person.DefaultBillingRate),
		rate.NullDecimal(person.DefaultCostRate),
	)
	if err != nil {
		err := fmt.Errorf("could not store person: %w", err)
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

func (r *RepoImpl) GetPerson(ctx context.Context, tenantId int, id int) (Person, error) {
	query := `SELECT id, uid, display_name, role_id, default_billing_rate, default_cost_rate
				FROM person WHERE tenant_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, tenantId, id)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Person{}, ErrPersonNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get person: %w", err)
		log.Error(err)
		return Person{}, err
	}
	return person, nil
}

func (r *RepoImpl) GetPersons(ctx context.Context, tenantId int) ([]Person, error) {
	query := `SELECT id, uid, display_name, role_id, default_billing_rate, default_cost_rate
				FROM person WHERE tenant_id = ? ORDER BY display_name`
	rows, err := r.db.QueryContext(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query persons: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	persons := make([]Person, 0, 10)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			err := fmt.Errorf("could not scan person: %w", err)
			log.Error(err)
			return nil, err
		}
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return persons, nil
}

func (r *RepoImpl) UpdatePerson(ctx context.Context, tenantId int, person Person) (bool, error) {
	query := `UPDATE person SET display_name = ?, role_id = ?, default_billing_rate = ?, default_cost_rate = ?
				WHERE id = ? AND tenant_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		person.DisplayName,
		nullInt(person.RoleId),
		rate.NullDecimal(person.DefaultBillingRate),
		rate.NullDecimal(person.DefaultCostRate),
		person.Id,
		tenantId,
	)
	if err != nil {
		err := fmt.Errorf("could not update person: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepoImpl) DeletePerson(ctx context.Context, tenantId int, id int) (bool, error) {
	query := "DELETE FROM person WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete person: %w", err)
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

func scanPerson(row rowScanner) (Person, error) {
	var person Person
	var roleId sql.NullInt64
	var billing, cost sql.NullString
	if err := row.Scan(&person.Id, &person.Uid, &person.DisplayName, &roleId, &billing, &cost); err != nil {
		return Person{}, err
	}
	person.RoleId = int(roleId.Int64)
	var err error
	if person.DefaultBillingRate, err = rate.DecimalFromNull(billing); err != nil {
		return Person{}, err
	}
	if person.DefaultCostRate, err = rate.DecimalFromNull(cost); err != nil {
		return Person{}, err
	}
	return person, nil
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
