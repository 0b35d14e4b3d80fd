package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itnnovator/annota-backend/internal/comments/domain"
	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const commentColumns = `id::text, project_id::text, page_url, click_x, click_y, message, status,
	screenshot_url, anchor_selector, anchor_offset_x_pct, anchor_offset_y_pct, anchor_tag, created_at`

type commentRow struct {
	status     string
	anchorSel  *string
	anchorXPct *float64
	anchorYPct *float64
	anchorTag  *string
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	var aux commentRow
	err := row.Scan(&c.ID, &c.ProjectID, &c.PageURL, &c.ClickX, &c.ClickY, &c.Message, &aux.status,
		&c.ScreenshotURL, &aux.anchorSel, &aux.anchorXPct, &aux.anchorYPct, &aux.anchorTag, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Status = domain.Status(aux.status)
	c.Anchor = buildAnchor(aux)
	return &c, nil
}

func buildAnchor(aux commentRow) *anchor.Descriptor {
	if aux.anchorSel == nil {
		return nil
	}
	d := &anchor.Descriptor{Selector: *aux.anchorSel}
	if aux.anchorXPct != nil {
		d.OffsetXPct = *aux.anchorXPct
	}
	if aux.anchorYPct != nil {
		d.OffsetYPct = *aux.anchorYPct
	}
	if aux.anchorTag != nil {
		d.TagName = *aux.anchorTag
	}
	return d
}

func (r *Repo) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	const q = `
insert into comments (id, project_id, page_url, click_x, click_y, message, status,
	screenshot_url, anchor_selector, anchor_offset_x_pct, anchor_offset_y_pct, anchor_tag)
values ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
returning ` + commentColumns + `;`

	var sel, tag *string
	var xPct, yPct *float64
	if c.Anchor != nil {
		sel, tag = &c.Anchor.Selector, &c.Anchor.TagName
		xPct, yPct = &c.Anchor.OffsetXPct, &c.Anchor.OffsetYPct
	}

	id := uuid.New().String()
	return scanComment(r.db.QueryRow(ctx, q, id, c.ProjectID, c.PageURL, c.ClickX, c.ClickY,
		c.Message, string(domain.StatusOpen), c.ScreenshotURL, sel, xPct, yPct, tag))
}

// ListByProject returns a project's comments, newest first. pageURL and
// status are optional filters; an empty value matches everything.
func (r *Repo) ListByProject(ctx context.Context, projectID, pageURL string, status domain.Status) ([]domain.Comment, error) {
	const q = `
select ` + commentColumns + `
from comments
where project_id = $1::uuid
  and ($2 = '' or page_url = $2)
  and ($3 = '' or status = $3)
order by created_at desc;`

	rows, err := r.db.Query(ctx, q, projectID, pageURL, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Comment, 0, 16)
	for rows.Next() {
		var c domain.Comment
		var aux commentRow
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.PageURL, &c.ClickX, &c.ClickY, &c.Message, &aux.status,
			&c.ScreenshotURL, &aux.anchorSel, &aux.anchorXPct, &aux.anchorYPct, &aux.anchorTag, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = domain.Status(aux.status)
		c.Anchor = buildAnchor(aux)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetForProject scopes a comment lookup to one project so a public link can
// never reach a foreign comment.
func (r *Repo) GetForProject(ctx context.Context, projectID, id string) (*domain.Comment, error) {
	const q = `select ` + commentColumns + ` from comments where id = $1::uuid and project_id = $2::uuid;`
	return scanComment(r.db.QueryRow(ctx, q, id, projectID))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const q = `select ` + commentColumns + ` from comments where id = $1::uuid;`
	return scanComment(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Comment, error) {
	const q = `
update comments set status = $2 where id = $1::uuid
returning ` + commentColumns + `;`
	return scanComment(r.db.QueryRow(ctx, q, id, string(status)))
}
