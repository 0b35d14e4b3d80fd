package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	fbdomain "github.com/itnnovator/annota-backend/internal/feedback/domain"
	"github.com/itnnovator/annota-backend/internal/review/bridge"
	"github.com/itnnovator/annota-backend/internal/review/repository"
	"github.com/itnnovator/annota-backend/internal/review/service"
)

const maxMessageBytes = 64 << 10

type Handler struct {
	review *service.ReviewService
}

func NewHandler(review *service.ReviewService) *Handler {
	return &Handler{review: review}
}

// Register registers the review bridge routes. Like the feedback routes the
// share token is the credential; sessions inherit it.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/review/sessions", h.CreateSession)
	rg.GET("/review/sessions/:id", h.GetSession)
	rg.DELETE("/review/sessions/:id", h.CloseSession)
	rg.PUT("/review/sessions/:id/path", h.SetManualPath)
	rg.POST("/review/sessions/:id/messages", h.ApplyMessage)
	rg.GET("/review/sessions/:id/pins", h.RenderFrame)
}

func (h *Handler) CreateSession(c *gin.Context) {
	var body struct {
		FeedbackToken string  `json:"feedbackToken"`
		InitialWidth  float64 `json:"initialWidth"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.review.CreateSession(c.Request.Context(), body.FeedbackToken, body.InitialWidth)
	if err != nil {
		if errors.Is(err, fbdomain.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.review.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.review.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetManualPath(c *gin.Context) {
	var body struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.review.SetManualPath(c.Request.Context(), c.Param("id"), body.Path)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, bridge.ErrInvalidPath):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, bridge.ErrAutoDetected):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set path"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// ApplyMessage takes one raw frame the hosting UI relayed from the embedded
// page. Frames from other scripts on the page are acknowledged and dropped.
func (h *Handler) ApplyMessage(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxMessageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, up, err := h.review.ApplyMessage(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, bridge.ErrForeignMessage):
			c.JSON(http.StatusOK, gin.H{"ignored": true})
		case errors.Is(err, bridge.ErrUnknownType), errors.Is(err, bridge.ErrWrongDirection):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		}
		return
	}

	resp := gin.H{"session": sess, "pathChanged": up.PathChanged}
	if up.FocusCommentID != "" {
		resp["focusCommentId"] = up.FocusCommentID
	}
	if up.Anchor != nil {
		resp["anchor"] = up.Anchor
	}
	c.JSON(http.StatusOK, resp)
}

// RenderFrame returns the full render-pins frame, already in wire form, so
// the hosting UI can forward it to the iframe verbatim.
func (h *Handler) RenderFrame(c *gin.Context) {
	frame, err := h.review.RenderFrame(c.Request.Context(), c.Param("id"), c.Query("active"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, fbdomain.ErrLinkNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback link not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build render frame"})
		}
		return
	}

	data, err := bridge.Encode(frame)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode render frame"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
