package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrProjectNotFound = errors.New("project not found")

type Repo interface {
	Store(ctx context.Context, tenantId int, project Project) (int, error)
	Get(ctx context.Context, tenantId int, id int) (Project, error)
	GetAll(ctx context.Context, tenantId int) ([]Project, error)
	Exists(ctx context.Context, tenantId int, id int) (bool, error)
	Update(ctx context.Context, tenantId int, project Project) (bool, error)
	Delete(ctx context.Context, tenantId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, tenantId int, project Project) (int, error) {
	query := "INSERT INTO project (tenant_id, name, client_name, status) VALUES (?, ?, ?, ?)"
	result, err := r.db.ExecContext(ctx, query, tenantId, project.Name, project.ClientName, project.Status)
	if err != nil {
		err := fmt.Errorf("could not store project: %w", err)
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

func (r *RepoImpl) Get(ctx context.Context, tenantId int, id int) (Project, error) {
	query := "SELECT id, name, client_name, status FROM project WHERE tenant_id = ? AND id = ?"
	var p Project
	err := r.db.QueryRowContext(ctx, query, tenantId, id).Scan(&p.Id, &p.Name, &p.ClientName, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrProjectNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return p, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, tenantId int) ([]Project, error) {
	query := "SELECT id, name, client_name, status FROM project WHERE tenant_id = ? ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0, 10)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Id, &p.Name, &p.ClientName, &p.Status); err != nil {
			err := fmt.Errorf("could not scan project: %w", err)
			log.Error(err)
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return projects, nil
}

func (r *RepoImpl) Exists(ctx context.Context, tenantId int, id int) (bool, error) {
	query := "SELECT 1 FROM project WHERE tenant_id = ? AND id = ?"
	var one int
	err := r.db.QueryRowContext(ctx, query, tenantId, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		err := fmt.Errorf("could not check project existence: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepoImpl) Update(ctx context.Context, tenantId int, project Project) (bool, error) {
	query := "UPDATE project SET name = ?, client_name = ?, status = ? WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, project.Name, project.ClientName, project.Status, project.Id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not update project: %w", err)
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
	query := "DELETE FROM project WHERE id = ? AND tenant_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete project: %w", err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
