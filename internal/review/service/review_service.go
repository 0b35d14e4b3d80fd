package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	cdomain "github.com/itnnovator/annota-backend/internal/comments/domain"
	fbdomain "github.com/itnnovator/annota-backend/internal/feedback/domain"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
	"github.com/itnnovator/annota-backend/internal/review/bridge"
	"github.com/itnnovator/annota-backend/internal/review/overlay"
)

type LinkStore interface {
	GetByToken(ctx context.Context, token string) (*fbdomain.FeedbackLink, error)
}

type ProjectStore interface {
	GetByID(ctx context.Context, id string) (*projdomain.Project, error)
}

type CommentStore interface {
	ListByProject(ctx context.Context, projectID, pageURL string, status cdomain.Status) ([]cdomain.Comment, error)
}

type SessionStore interface {
	Save(ctx context.Context, s *bridge.Session) error
	Get(ctx context.Context, id string) (*bridge.Session, error)
	Delete(ctx context.Context, id string) error
}

// ReviewService runs the host side of the review bridge over HTTP: the
// hosting UI posts raw embed messages in, and pulls render frames out.
type ReviewService struct {
	links    LinkStore
	projects ProjectStore
	comments CommentStore
	sessions SessionStore
}

func NewReviewService(links LinkStore, projects ProjectStore, comments CommentStore, sessions SessionStore) *ReviewService {
	return &ReviewService{links: links, projects: projects, comments: comments, sessions: sessions}
}

func (s *ReviewService) resolveLink(ctx context.Context, token string) (*fbdomain.FeedbackLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !link.IsActive {
		return nil, fbdomain.ErrLinkNotFound
	}
	return link, nil
}

// CreateSession opens a bridge session for a share link. initialWidth may be
// zero; the first scroll-update fills it in.
func (s *ReviewService) CreateSession(ctx context.Context, feedbackToken string, initialWidth float64) (*bridge.Session, error) {
	if _, err := s.resolveLink(ctx, feedbackToken); err != nil {
		return nil, err
	}

	sess := bridge.NewSession(uuid.New().String(), feedbackToken, initialWidth, time.Now().UTC())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession loads a session and lets the timeout check run, so a session
// whose embed never announced itself degrades to manual mode on read.
func (s *ReviewService) GetSession(ctx context.Context, id string) (*bridge.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before := sess.PreviewUnavailable
	sess.CheckEmbedTimeout(time.Now().UTC())
	if sess.PreviewUnavailable != before {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// ApplyMessage feeds one raw embed frame through the session state machine
// and persists the result. Foreign-source frames are ignored upstream by the
// decoder; wrong-direction frames surface as errors.
func (s *ReviewService) ApplyMessage(ctx context.Context, id string, raw []byte) (*bridge.Session, bridge.Update, error) {
	var up bridge.Update

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, up, err
	}

	msg, err := bridge.Decode(raw)
	if err != nil {
		return nil, up, err
	}
	up, err = sess.Apply(msg, time.Now().UTC())
	if err != nil {
		return nil, up, err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, up, err
	}
	return sess, up, nil
}

func (s *ReviewService) SetManualPath(ctx context.Context, id, path string) (*bridge.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SetManualPath(path); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RenderFrame builds the render-pins frame for the session's current page:
// every comment there, open or resolved, becomes a pin numbered in creation
// order. activeCommentID highlights at most one pin.
func (s *ReviewService) RenderFrame(ctx context.Context, id, activeCommentID string) (*bridge.RenderPins, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	link, err := s.resolveLink(ctx, sess.FeedbackToken)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByProject(ctx, link.ProjectID, sess.CurrentPath, "")
	if err != nil {
		return nil, err
	}

	// ListByProject returns newest first; pins are numbered oldest first so
	// numbers stay stable as comments accrue.
	pins := make([]overlay.Pin, 0, len(comments))
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		pins = append(pins, overlay.Pin{
			ID:      c.ID,
			Number:  len(pins) + 1,
			Status:  string(c.Status),
			Message: c.Message,
			Active:  c.ID == activeCommentID,
			DocX:    c.ClickX,
			DocY:    c.ClickY,
			Anchor:  c.Anchor,
		})
	}
	return sess.RenderFrame(pins), nil
}

func (s *ReviewService) CloseSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}
