package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itnnovator/annota-backend/internal/projects/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const projectColumns = `id::text, owner_id::text, name, base_url, status, approved_at, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var status string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.BaseURL, &status, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Status = domain.Status(status)
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, ownerID, name, baseURL string) (*domain.Project, error) {
	const q = `
insert into projects (id, owner_id, name, base_url, status)
values ($1::uuid, $2::uuid, $3, $4, $5)
returning ` + projectColumns + `;`

	id := uuid.New().String()
	return scanProject(r.db.QueryRow(ctx, q, id, ownerID, name, baseURL, string(domain.StatusInReview)))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const q = `select ` + projectColumns + ` from projects where id = $1::uuid;`
	return scanProject(r.db.QueryRow(ctx, q, id))
}

// GetForOwner scopes the lookup to one owner. A foreign project is
// indistinguishable from a missing one.
func (r *Repo) GetForOwner(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	const q = `select ` + projectColumns + ` from projects where id = $1::uuid and owner_id = $2::uuid;`
	return scanProject(r.db.QueryRow(ctx, q, id, ownerID))
}

func (r *Repo) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where owner_id = $1::uuid
order by updated_at desc;`

	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		var status string
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.BaseURL, &status, &p.ApprovedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = domain.Status(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `delete from projects where id = $1::uuid and owner_id = $2::uuid;`
	ct, err := r.db.Exec(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Touch bumps updated_at, keeping the owner's dashboard ordering honest
// after comment or link activity.
func (r *Repo) Touch(ctx context.Context, id string, at time.Time) error {
	const q = `update projects set updated_at = $2 where id = $1::uuid;`
	_, err := r.db.Exec(ctx, q, id, at)
	return err
}
