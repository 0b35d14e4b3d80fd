package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/itnnovator/annota-backend/internal/approval/domain"
	fbdomain "github.com/itnnovator/annota-backend/internal/feedback/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
)

type ProjectStore interface {
	GetByID(ctx context.Context, id string) (*projdomain.Project, error)
	GetForOwner(ctx context.Context, ownerID, id string) (*projdomain.Project, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *domain.ApprovalRequest) error
	GetByToken(ctx context.Context, token string) (*domain.ApprovalRequest, error)
	InvalidateActive(ctx context.Context, projectID string, now time.Time) (int64, error)
	Confirm(ctx context.Context, requestID, projectID string, now time.Time) error
}

type LinkStore interface {
	GetByProject(ctx context.Context, projectID string) (*fbdomain.FeedbackLink, error)
}

type Mailer interface {
	Enabled() bool
	SendApproval(ctx context.Context, to, projectName, approvalURL, pin string) error
}

// ApprovalService drives a project through the approval state machine:
// request → PIN issuance → verification → lock.
type ApprovalService struct {
	projects ProjectStore
	requests RequestStore
	links    LinkStore
	mailer   Mailer

	webBaseURL string
}

func NewApprovalService(projects ProjectStore, requests RequestStore, links LinkStore, mailer Mailer, webBaseURL string) *ApprovalService {
	return &ApprovalService{
		projects:   projects,
		requests:   requests,
		links:      links,
		mailer:     mailer,
		webBaseURL: strings.TrimSuffix(webBaseURL, "/"),
	}
}

// RequestResult reports how the PIN left the building. DevPin/DevURL are
// only populated in the no-transport dev fallback; in production they stay
// empty and the PIN exists solely in the recipient's inbox.
type RequestResult struct {
	DevPin string
	DevURL string
}

// RequestApproval invalidates every live request for the project, issues a
// fresh token + 6-digit PIN (stored only as a salted hash), and emails the
// approval link. Ownership failures read as not-found.
func (s *ApprovalService) RequestApproval(ctx context.Context, ownerID, projectID, recipient string) (*RequestResult, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, domain.ErrEmailRequired
	}

	project, err := s.projects.GetForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Approved() {
		return nil, projdomain.ErrAlreadyApproved
	}

	now := time.Now().UTC()

	// Single-live-token rule: supersede everything still active before the
	// new request exists.
	if _, err := s.requests.InvalidateActive(ctx, projectID, now); err != nil {
		return nil, err
	}

	token, err := domain.NewToken()
	if err != nil {
		return nil, err
	}
	pin, err := domain.NewPin()
	if err != nil {
		return nil, err
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	req := &domain.ApprovalRequest{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Email:     recipient,
		Token:     token,
		PinHash:   string(pinHash),
		ExpiresAt: now.Add(domain.TokenLifetime),
		CreatedAt: now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	approvalURL := s.webBaseURL + "/approve/" + token

	if !s.mailer.Enabled() {
		// Local testing only: no transport configured, hand the secrets
		// back instead of pretending a mail went out.
		log.Printf("[approval] no mail transport configured, returning pin for project=%s", projectID)
		return &RequestResult{DevPin: pin, DevURL: approvalURL}, nil
	}

	if err := s.mailer.SendApproval(ctx, recipient, project.Name, approvalURL, pin); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return &RequestResult{}, nil
}

// Info is what the public approval page renders.
type Info struct {
	Project      *projdomain.Project
	CommentToken string
}

// GetApprovalInfo resolves a token for display. "Already approved" wins
// over every expiry/usage check so a stale link still shows the success
// state; otherwise a dead token is indistinguishable from an absent one.
func (s *ApprovalService) GetApprovalInfo(ctx context.Context, token string) (*Info, error) {
	req, err := s.requests.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, projdomain.ErrNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	if !project.Approved() && !req.Usable(time.Now().UTC()) {
		return nil, domain.ErrRequestNotFound
	}

	info := &Info{Project: project}
	if link, err := s.links.GetByProject(ctx, req.ProjectID); err == nil {
		info.CommentToken = link.Token
	}
	return info, nil
}

// ConfirmApproval verifies the PIN and performs the atomic approve+consume
// transition. Confirming an already-approved project is a success no-op, so
// retried submissions and page reloads are harmless.
func (s *ApprovalService) ConfirmApproval(ctx context.Context, token, pin string) error {
	req, err := s.requests.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, projdomain.ErrNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}

	// Sticky approval: short-circuits before any expiry/usage check.
	if project.Approved() {
		return nil
	}

	now := time.Now().UTC()
	if !req.Usable(now) {
		return domain.ErrRequestNotFound
	}

	// bcrypt's comparison is the constant-time-safe primitive here.
	if err := bcrypt.CompareHashAndPassword([]byte(req.PinHash), []byte(pin)); err != nil {
		return domain.ErrInvalidPin
	}

	err = s.requests.Confirm(ctx, req.ID, req.ProjectID, now)
	if errors.Is(err, domain.ErrRequestConsumed) {
		// Lost the race. If the winner approved the project this is the
		// idempotent success case; anything else fails closed.
		fresh, ferr := s.projects.GetByID(ctx, req.ProjectID)
		if ferr == nil && fresh.Approved() {
			return nil
		}
		return domain.ErrRequestNotFound
	}
	return err
}
