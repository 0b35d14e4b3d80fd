package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdomain "github.com/itnnovator/annota-backend/internal/comments/domain"
	"github.com/itnnovator/annota-backend/internal/feedback/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

type fakeLinks struct {
	byToken map[string]*domain.FeedbackLink
}

func (f *fakeLinks) GetByToken(_ context.Context, token string) (*domain.FeedbackLink, error) {
	l, ok := f.byToken[token]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	return l, nil
}

type fakeProjects struct {
	byID map[string]*projdomain.Project
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*projdomain.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, projdomain.ErrNotFound
	}
	return p, nil
}

type fakeComments struct {
	byID   map[string]*cdomain.Comment
	nextID int
}

func (f *fakeComments) Create(_ context.Context, c *cdomain.Comment) (*cdomain.Comment, error) {
	f.nextID++
	cp := *c
	cp.ID = fmt.Sprintf("c-%d", f.nextID)
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeComments) ListByProject(_ context.Context, projectID, pageURL string, status cdomain.Status) ([]cdomain.Comment, error) {
	var out []cdomain.Comment
	for _, c := range f.byID {
		if c.ProjectID != projectID {
			continue
		}
		if pageURL != "" && c.PageURL != pageURL {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeComments) GetForProject(_ context.Context, projectID, id string) (*cdomain.Comment, error) {
	c, ok := f.byID[id]
	if !ok || c.ProjectID != projectID {
		return nil, cdomain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) UpdateStatus(_ context.Context, id string, status cdomain.Status) (*cdomain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, cdomain.ErrNotFound
	}
	c.Status = status
	cp := *c
	return &cp, nil
}

func newFixture() (*FeedbackService, *fakeProjects, *fakeComments) {
	links := &fakeLinks{byToken: map[string]*domain.FeedbackLink{
		"live":    {Token: "live", ProjectID: "p-1", IsActive: true},
		"revoked": {Token: "revoked", ProjectID: "p-1", IsActive: false},
	}}
	projects := &fakeProjects{byID: map[string]*projdomain.Project{
		"p-1": {ID: "p-1", Name: "Landing Redesign", BaseURL: "https://staging.x.test", Status: projdomain.StatusInReview},
	}}
	comments := &fakeComments{byID: map[string]*cdomain.Comment{}}
	return NewFeedbackService(links, projects, comments), projects, comments
}

func validInput() CreateCommentInput {
	return CreateCommentInput{
		PageURL: "/pricing",
		ClickX:  120,
		ClickY:  480,
		Message: "this button overlaps the footer",
		Anchor:  &anchor.Descriptor{Selector: "#cta", OffsetXPct: 0.4, OffsetYPct: 0.6, TagName: "BUTTON"},
	}
}

func TestSummary(t *testing.T) {
	svc, _, _ := newFixture()
	ctx := context.Background()

	t.Run("live link", func(t *testing.T) {
		s, err := svc.Summary(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, "p-1", s.Project.ID)
		assert.Equal(t, projdomain.StatusInReview, s.Project.Status)
		assert.True(t, s.Link.IsActive)
	})

	t.Run("revoked link reads as missing", func(t *testing.T) {
		_, err := svc.Summary(ctx, "revoked")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Summary(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates open comment with anchor", func(t *testing.T) {
		svc, _, _ := newFixture()
		c, err := svc.CreateComment(ctx, "live", validInput())
		require.NoError(t, err)
		assert.Equal(t, cdomain.StatusOpen, c.Status)
		assert.Equal(t, "p-1", c.ProjectID)
		require.NotNil(t, c.Anchor)
		assert.Equal(t, "#cta", c.Anchor.Selector)
	})

	t.Run("trims message", func(t *testing.T) {
		svc, _, _ := newFixture()
		in := validInput()
		in.Message = "  needs contrast  "
		c, err := svc.CreateComment(ctx, "live", in)
		require.NoError(t, err)
		assert.Equal(t, "needs contrast", c.Message)
	})

	t.Run("approved project locks comment creation", func(t *testing.T) {
		svc, projects, _ := newFixture()
		at := time.Now()
		projects.byID["p-1"].Status = projdomain.StatusApproved
		projects.byID["p-1"].ApprovedAt = &at

		_, err := svc.CreateComment(ctx, "live", validInput())
		assert.ErrorIs(t, err, ErrCommentsLocked)
	})

	t.Run("revoked link wins over validation", func(t *testing.T) {
		svc, _, _ := newFixture()
		in := validInput()
		in.Message = ""
		_, err := svc.CreateComment(ctx, "revoked", in)
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})

	t.Run("validation errors propagate", func(t *testing.T) {
		svc, _, _ := newFixture()

		in := validInput()
		in.PageURL = "pricing"
		_, err := svc.CreateComment(ctx, "live", in)
		assert.ErrorIs(t, err, cdomain.ErrInvalidPageURL)

		in = validInput()
		in.ClickX = -1
		_, err = svc.CreateComment(ctx, "live", in)
		assert.ErrorIs(t, err, cdomain.ErrInvalidCoordinates)
	})
}

func TestListComments(t *testing.T) {
	svc, _, comments := newFixture()
	ctx := context.Background()

	seed := []cdomain.Comment{
		{ProjectID: "p-1", PageURL: "/", Status: cdomain.StatusOpen},
		{ProjectID: "p-1", PageURL: "/pricing", Status: cdomain.StatusResolved},
		{ProjectID: "p-other", PageURL: "/", Status: cdomain.StatusOpen},
	}
	for i := range seed {
		_, err := comments.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	t.Run("scoped to the linked project", func(t *testing.T) {
		got, err := svc.ListComments(ctx, "live", "", "")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("page filter", func(t *testing.T) {
		got, err := svc.ListComments(ctx, "live", "/pricing", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cdomain.StatusResolved, got[0].Status)
	})

	t.Run("status filter validated", func(t *testing.T) {
		_, err := svc.ListComments(ctx, "live", "", "WONTFIX")
		assert.ErrorIs(t, err, cdomain.ErrInvalidStatus)
	})
}

func TestUpdateCommentStatus(t *testing.T) {
	ctx := context.Background()

	seedComment := func(t *testing.T, comments *fakeComments, status cdomain.Status) string {
		t.Helper()
		c, err := comments.Create(ctx, &cdomain.Comment{ProjectID: "p-1", PageURL: "/", Message: "m", Status: status})
		require.NoError(t, err)
		return c.ID
	}

	t.Run("client resolves an open comment", func(t *testing.T) {
		svc, _, comments := newFixture()
		id := seedComment(t, comments, cdomain.StatusOpen)

		got, err := svc.UpdateCommentStatus(ctx, "live", id, cdomain.StatusResolved)
		require.NoError(t, err)
		assert.Equal(t, cdomain.StatusResolved, got.Status)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		svc, _, comments := newFixture()
		id := seedComment(t, comments, cdomain.StatusResolved)

		got, err := svc.UpdateCommentStatus(ctx, "live", id, cdomain.StatusResolved)
		require.NoError(t, err)
		assert.Equal(t, cdomain.StatusResolved, got.Status)
	})

	t.Run("client may not reopen", func(t *testing.T) {
		svc, _, comments := newFixture()
		id := seedComment(t, comments, cdomain.StatusResolved)

		_, err := svc.UpdateCommentStatus(ctx, "live", id, cdomain.StatusOpen)
		assert.ErrorIs(t, err, cdomain.ErrReopenDenied)
	})

	t.Run("foreign comment reads as missing", func(t *testing.T) {
		svc, _, comments := newFixture()
		c, err := comments.Create(ctx, &cdomain.Comment{ProjectID: "p-other", PageURL: "/", Message: "m", Status: cdomain.StatusOpen})
		require.NoError(t, err)

		_, err = svc.UpdateCommentStatus(ctx, "live", c.ID, cdomain.StatusResolved)
		assert.ErrorIs(t, err, cdomain.ErrNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _, comments := newFixture()
		id := seedComment(t, comments, cdomain.StatusOpen)

		_, err := svc.UpdateCommentStatus(ctx, "live", id, "ARCHIVED")
		assert.ErrorIs(t, err, cdomain.ErrInvalidStatus)
	})
}
