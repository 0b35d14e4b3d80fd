package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cdomain "github.com/itnnovator/annota-backend/internal/comments/domain"
	"github.com/itnnovator/annota-backend/internal/feedback/domain"
	"github.com/itnnovator/annota-backend/internal/feedback/service"
	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

type Handler struct {
	feedback *service.FeedbackService
}

func NewHandler(feedback *service.FeedbackService) *Handler {
	return &Handler{feedback: feedback}
}

// Register registers the public share-link routes. Everything here is
// unauthenticated; the token in the path is the only credential.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/f/:token", h.Summary)
	rg.GET("/f/:token/comments", h.ListComments)
	rg.POST("/f/:token/comments", h.CreateComment)
	rg.PATCH("/f/:token/comments/:id/status", h.UpdateCommentStatus)
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.feedback.Summary(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.feedback.ListComments(c.Request.Context(), c.Param("token"),
		c.Query("pageUrl"), cdomain.Status(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *Handler) CreateComment(c *gin.Context) {
	var body struct {
		PageURL       string             `json:"pageUrl"`
		ClickX        float64            `json:"clickX"`
		ClickY        float64            `json:"clickY"`
		Message       string             `json:"message"`
		ScreenshotURL string             `json:"screenshotUrl"`
		Anchor        *anchor.Descriptor `json:"anchor"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.feedback.CreateComment(c.Request.Context(), c.Param("token"), service.CreateCommentInput{
		PageURL:       body.PageURL,
		ClickX:        body.ClickX,
		ClickY:        body.ClickY,
		Message:       body.Message,
		ScreenshotURL: body.ScreenshotURL,
		Anchor:        body.Anchor,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handler) UpdateCommentStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.feedback.UpdateCommentStatus(c.Request.Context(), c.Param("token"),
		c.Param("id"), cdomain.Status(body.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// fail maps service errors onto the public surface. A dead link and a
// foreign comment both collapse into 404 so the route leaks nothing.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "feedback link not found"})
	case errors.Is(err, cdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
	case errors.Is(err, service.ErrCommentsLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "project is approved, comments are closed"})
	case errors.Is(err, cdomain.ErrInvalidStatus),
		errors.Is(err, cdomain.ErrMessageRequired),
		errors.Is(err, cdomain.ErrInvalidPageURL),
		errors.Is(err, cdomain.ErrInvalidCoordinates),
		errors.Is(err, cdomain.ErrInvalidAnchor),
		errors.Is(err, cdomain.ErrReopenDenied):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
