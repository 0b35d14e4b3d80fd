package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itnnovator/annota-backend/internal/comments/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
)

type fakeComments struct {
	byID map[string]*domain.Comment
}

func (f *fakeComments) ListByProject(_ context.Context, projectID, pageURL string, status domain.Status) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.byID {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComments) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Comment, error) {
	c := f.byID[id]
	c.Status = status
	cp := *c
	return &cp, nil
}

type fakeProjects struct {
	byID map[string]*projdomain.Project
}

func (f *fakeProjects) GetForOwner(_ context.Context, ownerID, id string) (*projdomain.Project, error) {
	p, ok := f.byID[id]
	if !ok || p.OwnerID != ownerID {
		// wrapped like a repository would wrap it
		return nil, fmt.Errorf("project lookup: %w", projdomain.ErrNotFound)
	}
	return p, nil
}

func newFixture() *CommentService {
	comments := &fakeComments{byID: map[string]*domain.Comment{
		"c-1": {ID: "c-1", ProjectID: "p-1", Status: domain.StatusResolved},
		"c-2": {ID: "c-2", ProjectID: "p-foreign", Status: domain.StatusOpen},
	}}
	projects := &fakeProjects{byID: map[string]*projdomain.Project{
		"p-1":       {ID: "p-1", OwnerID: "u-1"},
		"p-foreign": {ID: "p-foreign", OwnerID: "u-other"},
	}}
	return NewCommentService(comments, projects)
}

func TestOwnerUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("owner may reopen", func(t *testing.T) {
		svc := newFixture()
		got, err := svc.UpdateStatus(ctx, "u-1", "c-1", domain.StatusOpen)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, got.Status)
	})

	t.Run("foreign project comment reads as missing", func(t *testing.T) {
		svc := newFixture()
		_, err := svc.UpdateStatus(ctx, "u-1", "c-2", domain.StatusResolved)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := newFixture()
		_, err := svc.UpdateStatus(ctx, "u-1", "c-1", "DONE")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestOwnerListComments(t *testing.T) {
	ctx := context.Background()
	svc := newFixture()

	got, err := svc.ListForOwner(ctx, "u-1", "p-1", "", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListForOwner(ctx, "u-1", "p-foreign", "", "")
	assert.ErrorIs(t, err, projdomain.ErrNotFound)
}
