package service

import (
	"context"
	"errors"

	"github.com/itnnovator/annota-backend/internal/comments/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
)

type CommentStore interface {
	ListByProject(ctx context.Context, projectID, pageURL string, status domain.Status) ([]domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Comment, error)
}

type ProjectStore interface {
	GetForOwner(ctx context.Context, ownerID, id string) (*projdomain.Project, error)
}

// CommentService is the owner-side view of comments. Owners may flip status
// in both directions, unlike the public link.
type CommentService struct {
	comments CommentStore
	projects ProjectStore
}

func NewCommentService(comments CommentStore, projects ProjectStore) *CommentService {
	return &CommentService{comments: comments, projects: projects}
}

func (s *CommentService) ListForOwner(ctx context.Context, ownerID, projectID, pageURL string, status domain.Status) ([]domain.Comment, error) {
	if status != "" && !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	project, err := s.projects.GetForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByProject(ctx, project.ID, pageURL, status)
}

// UpdateStatus flips a comment for its owner. The comment's project is
// resolved first so an owner can never touch a comment on someone else's
// project; that case reads as not-found.
func (s *CommentService) UpdateStatus(ctx context.Context, ownerID, commentID string, to domain.Status) (*domain.Comment, error) {
	if !domain.ValidStatus(to) {
		return nil, domain.ErrInvalidStatus
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.GetForOwner(ctx, ownerID, comment.ProjectID); err != nil {
		if errors.Is(err, projdomain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if comment.Status == to {
		return comment, nil
	}
	return s.comments.UpdateStatus(ctx, comment.ID, to)
}
