package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/itnnovator/annota-backend/internal/approval/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
)

// DB is the slice of pgxpool.Pool this repository needs. pgxmock satisfies
// it too, which is how the transaction paths are tested.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repo struct {
	db DB
}

func NewRepo(db DB) *Repo {
	return &Repo{db: db}
}

const requestColumns = `id::text, project_id::text, email, token, pin_hash, expires_at, used_at, created_at`

func (r *Repo) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	const q = `
insert into approval_requests (id, project_id, email, token, pin_hash, expires_at)
values ($1::uuid, $2::uuid, $3, $4, $5, $6);`

	_, err := r.db.Exec(ctx, q, req.ID, req.ProjectID, req.Email, req.Token, req.PinHash, req.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create approval request: %w", err)
	}
	return nil
}

func (r *Repo) GetByToken(ctx context.Context, token string) (*domain.ApprovalRequest, error) {
	const q = `select ` + requestColumns + ` from approval_requests where token = $1;`

	var req domain.ApprovalRequest
	err := r.db.QueryRow(ctx, q, token).
		Scan(&req.ID, &req.ProjectID, &req.Email, &req.Token, &req.PinHash, &req.ExpiresAt, &req.UsedAt, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// InvalidateActive soft-invalidates every unused request for a project by
// setting usedAt, enforcing single-live-token semantics before a new
// request is issued.
func (r *Repo) InvalidateActive(ctx context.Context, projectID string, now time.Time) (int64, error) {
	const q = `update approval_requests set used_at = $2 where project_id = $1::uuid and used_at is null;`
	ct, err := r.db.Exec(ctx, q, projectID, now)
	if err != nil {
		return 0, fmt.Errorf("invalidate approval requests: %w", err)
	}
	return ct.RowsAffected(), nil
}

// Confirm consumes a request and approves its project in one transaction.
// The guarded usedAt update is the concurrency gate: a racing confirm (or a
// racing InvalidateActive from a newer request) that commits first leaves
// zero rows for us, and we roll back with ErrRequestConsumed so the caller
// can fail closed or resolve to the idempotent already-approved case. Both
// writes commit or neither does; a half-approved state is an invariant
// violation, not an error path.
func (r *Repo) Confirm(ctx context.Context, requestID, projectID string, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin confirm tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const consumeQ = `update approval_requests set used_at = $2 where id = $1::uuid and used_at is null;`
	ct, err := tx.Exec(ctx, consumeQ, requestID, now)
	if err != nil {
		return fmt.Errorf("consume approval request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrRequestConsumed
	}

	const approveQ = `update projects set status = $2, approved_at = $3, updated_at = $3 where id = $1::uuid;`
	if _, err := tx.Exec(ctx, approveQ, projectID, string(projdomain.StatusApproved), now); err != nil {
		return fmt.Errorf("approve project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit confirm tx: %w", err)
	}
	return nil
}

// PurgeExpired deletes requests that expired without ever being consumed.
// Run from the maintenance worker; live semantics never depend on it.
func (r *Repo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	const q = `delete from approval_requests where expires_at < $1 and used_at is null;`
	ct, err := r.db.Exec(ctx, q, before)
	if err != nil {
		return 0, fmt.Errorf("purge expired approval requests: %w", err)
	}
	return ct.RowsAffected(), nil
}
