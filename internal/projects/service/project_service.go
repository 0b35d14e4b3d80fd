package service

import (
	"context"
	"strings"
	"time"

	fbdomain "github.com/itnnovator/annota-backend/internal/feedback/domain"
	"github.com/itnnovator/annota-backend/internal/projects/domain"
)

type ProjectStore interface {
	Create(ctx context.Context, ownerID, name, baseURL string) (*domain.Project, error)
	GetForOwner(ctx context.Context, ownerID, id string) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

type LinkStore interface {
	Upsert(ctx context.Context, projectID, token string) (*fbdomain.FeedbackLink, error)
	GetByProject(ctx context.Context, projectID string) (*fbdomain.FeedbackLink, error)
	Deactivate(ctx context.Context, projectID string) (bool, error)
}

type ProjectService struct {
	projects ProjectStore
	links    LinkStore
}

func NewProjectService(projects ProjectStore, links LinkStore) *ProjectService {
	return &ProjectService{projects: projects, links: links}
}

type CreateProjectInput struct {
	Name    string
	BaseURL string
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in CreateProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	baseURL, err := domain.NormalizeBaseURL(in.BaseURL)
	if err != nil {
		return nil, err
	}

	return s.projects.Create(ctx, ownerID, name, baseURL)
}

func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	return s.projects.GetForOwner(ctx, ownerID, id)
}

func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.projects.List(ctx, ownerID)
}

func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	ok, err := s.projects.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// ShareLink rotates the project's feedback link: a fresh token always
// replaces the old one, so handing out a new link revokes the previous URL.
func (s *ProjectService) ShareLink(ctx context.Context, ownerID, projectID string) (*fbdomain.FeedbackLink, error) {
	project, err := s.projects.GetForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	token, err := fbdomain.NewToken()
	if err != nil {
		return nil, err
	}
	link, err := s.links.Upsert(ctx, project.ID, token)
	if err != nil {
		return nil, err
	}
	_ = s.projects.Touch(ctx, project.ID, time.Now().UTC())
	return link, nil
}

func (s *ProjectService) GetLink(ctx context.Context, ownerID, projectID string) (*fbdomain.FeedbackLink, error) {
	project, err := s.projects.GetForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return s.links.GetByProject(ctx, project.ID)
}

func (s *ProjectService) RevokeLink(ctx context.Context, ownerID, projectID string) error {
	project, err := s.projects.GetForOwner(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	ok, err := s.links.Deactivate(ctx, project.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fbdomain.ErrLinkNotFound
	}
	return nil
}
