package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itnnovator/annota-backend/internal/auth"
	"github.com/itnnovator/annota-backend/internal/comments/domain"
	"github.com/itnnovator/annota-backend/internal/comments/service"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
)

type Handler struct {
	comments *service.CommentService
}

func NewHandler(comments *service.CommentService) *Handler {
	return &Handler{comments: comments}
}

// Register registers the owner comment routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/projects/:id/comments", h.ListComments)
	rg.PATCH("/comments/:id/status", h.UpdateStatus)
}

func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.comments.ListForOwner(c.Request.Context(), auth.OwnerDBID(c),
		c.Param("id"), c.Query("pageUrl"), domain.Status(c.Query("status")))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, projdomain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// UpdateStatus lets an owner resolve or reopen a comment.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.comments.UpdateStatus(c.Request.Context(), auth.OwnerDBID(c),
		c.Param("id"), domain.Status(body.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update comment"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}
