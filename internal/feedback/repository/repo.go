package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itnnovator/annota-backend/internal/feedback/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const linkColumns = `token, project_id::text, is_active, created_at`

func scanLink(row pgx.Row) (*domain.FeedbackLink, error) {
	var l domain.FeedbackLink
	if err := row.Scan(&l.Token, &l.ProjectID, &l.IsActive, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Upsert installs a fresh share token for a project, reactivating the link
// if it was revoked. The project↔link relation is one-to-one.
func (r *Repo) Upsert(ctx context.Context, projectID, token string) (*domain.FeedbackLink, error) {
	const q = `
insert into feedback_links (token, project_id, is_active)
values ($1, $2::uuid, true)
on conflict (project_id) do update
set token = excluded.token, is_active = true
returning ` + linkColumns + `;`
	return scanLink(r.db.QueryRow(ctx, q, token, projectID))
}

func (r *Repo) GetByToken(ctx context.Context, token string) (*domain.FeedbackLink, error) {
	const q = `select ` + linkColumns + ` from feedback_links where token = $1;`
	return scanLink(r.db.QueryRow(ctx, q, token))
}

func (r *Repo) GetByProject(ctx context.Context, projectID string) (*domain.FeedbackLink, error) {
	const q = `select ` + linkColumns + ` from feedback_links where project_id = $1::uuid;`
	return scanLink(r.db.QueryRow(ctx, q, projectID))
}

func (r *Repo) Deactivate(ctx context.Context, projectID string) (bool, error) {
	const q = `update feedback_links set is_active = false where project_id = $1::uuid;`
	ct, err := r.db.Exec(ctx, q, projectID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
