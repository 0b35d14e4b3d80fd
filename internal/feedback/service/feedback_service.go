package service

import (
	"context"
	"errors"
	"strings"
	"time"

	cdomain "github.com/itnnovator/annota-backend/internal/comments/domain"
	"github.com/itnnovator/annota-backend/internal/feedback/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

// ErrCommentsLocked is the 403 case: the link may be perfectly valid, but
// an approved project accepts no new comments.
var ErrCommentsLocked = errors.New("project is approved, comments are closed")

type LinkStore interface {
	GetByToken(ctx context.Context, token string) (*domain.FeedbackLink, error)
}

type ProjectStore interface {
	GetByID(ctx context.Context, id string) (*projdomain.Project, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *cdomain.Comment) (*cdomain.Comment, error)
	ListByProject(ctx context.Context, projectID, pageURL string, status cdomain.Status) ([]cdomain.Comment, error)
	GetForProject(ctx context.Context, projectID, id string) (*cdomain.Comment, error)
	UpdateStatus(ctx context.Context, id string, status cdomain.Status) (*cdomain.Comment, error)
}

// FeedbackService is the public, unauthenticated surface behind /f/:token.
// Every operation resolves the link first; an inactive or missing link is
// a uniform not-found regardless of project state.
type FeedbackService struct {
	links    LinkStore
	projects ProjectStore
	comments CommentStore
}

func NewFeedbackService(links LinkStore, projects ProjectStore, comments CommentStore) *FeedbackService {
	return &FeedbackService{links: links, projects: projects, comments: comments}
}

func (s *FeedbackService) resolveLink(ctx context.Context, token string) (*domain.FeedbackLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !link.IsActive {
		return nil, domain.ErrLinkNotFound
	}
	return link, nil
}

// Summary is the project view a share link exposes. It never echoes the
// token back.
type Summary struct {
	Project struct {
		ID      string            `json:"id"`
		Name    string            `json:"name"`
		BaseURL string            `json:"baseUrl"`
		Status  projdomain.Status `json:"status"`
	} `json:"project"`
	Link struct {
		IsActive bool `json:"isActive"`
	} `json:"link"`
}

func (s *FeedbackService) Summary(ctx context.Context, token string) (*Summary, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, link.ProjectID)
	if err != nil {
		return nil, err
	}

	var out Summary
	out.Project.ID = project.ID
	out.Project.Name = project.Name
	out.Project.BaseURL = project.BaseURL
	out.Project.Status = project.Status
	out.Link.IsActive = link.IsActive
	return &out, nil
}

// Project resolves the link and returns the backing project. Used by the
// review session layer, which needs status and id but not the summary DTO.
func (s *FeedbackService) Project(ctx context.Context, token string) (*projdomain.Project, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.projects.GetByID(ctx, link.ProjectID)
}

func (s *FeedbackService) ListComments(ctx context.Context, token, pageURL string, status cdomain.Status) ([]cdomain.Comment, error) {
	if status != "" && !cdomain.ValidStatus(status) {
		return nil, cdomain.ErrInvalidStatus
	}
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByProject(ctx, link.ProjectID, pageURL, status)
}

type CreateCommentInput struct {
	PageURL       string
	ClickX        float64
	ClickY        float64
	Message       string
	ScreenshotURL string
	Anchor        *anchor.Descriptor
}

// CreateComment posts a visitor comment through a share link. The approval
// lock is enforced here, at the creation boundary: once a project is
// APPROVED no new comment is accepted, no matter the link state.
func (s *FeedbackService) CreateComment(ctx context.Context, token string, in CreateCommentInput) (*cdomain.Comment, error) {
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, link.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Approved() {
		return nil, ErrCommentsLocked
	}

	if err := cdomain.ValidateNew(in.PageURL, in.ClickX, in.ClickY, in.Message, in.Anchor); err != nil {
		return nil, err
	}

	c := &cdomain.Comment{
		ProjectID: link.ProjectID,
		PageURL:   in.PageURL,
		ClickX:    in.ClickX,
		ClickY:    in.ClickY,
		Message:   strings.TrimSpace(in.Message),
		Status:    cdomain.StatusOpen,
		Anchor:    in.Anchor,
		CreatedAt: time.Now().UTC(),
	}
	if in.ScreenshotURL != "" {
		c.ScreenshotURL = &in.ScreenshotURL
	}
	return s.comments.Create(ctx, c)
}

// UpdateCommentStatus applies the client-side transition rule: resolving an
// open comment is allowed, reopening a resolved one is not (that is an
// agency action on the owner surface).
func (s *FeedbackService) UpdateCommentStatus(ctx context.Context, token, commentID string, to cdomain.Status) (*cdomain.Comment, error) {
	if !cdomain.ValidStatus(to) {
		return nil, cdomain.ErrInvalidStatus
	}
	link, err := s.resolveLink(ctx, token)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetForProject(ctx, link.ProjectID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Status == to {
		return comment, nil
	}
	if !cdomain.ClientTransitionAllowed(comment.Status, to) {
		return nil, cdomain.ErrReopenDenied
	}
	return s.comments.UpdateStatus(ctx, comment.ID, to)
}
