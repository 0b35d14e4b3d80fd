package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// EnsureByEmail finds or creates the agency account for an email address.
// The email header is the whole credential in this demo-grade auth model,
// so first contact provisions the account.
func (r *Repo) EnsureByEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email required")
	}

	const q = `
insert into users (id, email, updated_at)
values (gen_random_uuid(), $1, now())
on conflict (email) do update
set updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, email).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
