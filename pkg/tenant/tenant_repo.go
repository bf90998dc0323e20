package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrTenantNotFound = errors.New("tenant not found")

type Repo interface {
	Store(ctx context.Context, t Tenant) (int, error)
	GetByUid(ctx context.Context, uid string) (Tenant, error)
	GetAll(ctx context.Context) ([]Tenant, error)
	Delete(ctx context.Context, id int) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, t Tenant) (int, error) {
	query := "INSERT INTO tenant (uid, name) VALUES (?, ?)"
	result, err := r.db.ExecContext(ctx, query, t.Uid, t.Name)
	if err != nil {
		err := fmt.Errorf("could not store tenant: %w", err)
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

func (r *RepoImpl) GetByUid(ctx context.Context, uid string) (Tenant, error) {
	query := "SELECT id, uid, name FROM tenant WHERE uid = ?"
	var t Tenant
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&t.Id, &t.Uid, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debugf("tenant with uid %s not found", uid)
		return Tenant{}, ErrTenantNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get tenant: %w", err)
		log.Error(err)
		return Tenant{}, err
	}
	return t, nil
}

func (r *RepoImpl) GetAll(ctx context.Context) ([]Tenant, error) {
	query := "SELECT id, uid, name FROM tenant ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query tenants: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	tenants := make([]Tenant, 0, 10)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.Id, &t.Uid, &t.Name); err != nil {
			err := fmt.Errorf("could not scan tenant: %w", err)
			log.Error(err)
			return nil, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return tenants, nil
}

func (r *RepoImpl) Delete(ctx context.Context, id int) error {
	query := "DELETE FROM tenant WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not delete tenant: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
