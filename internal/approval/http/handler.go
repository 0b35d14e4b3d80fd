package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itnnovator/annota-backend/internal/approval/domain"
	"github.com/itnnovator/annota-backend/internal/approval/service"
	"github.com/itnnovator/annota-backend/internal/auth"
	projdomain "github.com/itnnovator/annota-backend/internal/projects/domain"
)

type Handler struct {
	approvals *service.ApprovalService
}

func NewHandler(approvals *service.ApprovalService) *Handler {
	return &Handler{approvals: approvals}
}

// RegisterOwner registers the authenticated side of the approval flow.
func (h *Handler) RegisterOwner(rg *gin.RouterGroup) {
	rg.POST("/projects/:id/approval", h.RequestApproval)
}

// RegisterPublic registers the token-addressed side used by the client.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/approval/:token", h.GetApprovalInfo)
	rg.POST("/approval/:token/confirm", h.ConfirmApproval)
}

func (h *Handler) RequestApproval(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.approvals.RequestApproval(c.Request.Context(), auth.OwnerDBID(c), c.Param("id"), body.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, projdomain.ErrAlreadyApproved):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, projdomain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		case errors.Is(err, domain.ErrDelivery):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send approval email"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request approval"})
		}
		return
	}

	resp := gin.H{"sent": result.DevPin == ""}
	if result.DevPin != "" {
		// Dev fallback only: no mail transport configured.
		resp["devPin"] = result.DevPin
		resp["devUrl"] = result.DevURL
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetApprovalInfo(c *gin.Context) {
	info, err := h.approvals.GetApprovalInfo(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "approval request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load approval request"})
		return
	}

	resp := gin.H{"project": info.Project}
	if info.CommentToken != "" {
		resp["commentToken"] = info.CommentToken
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ConfirmApproval(c *gin.Context) {
	var body struct {
		Pin string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.approvals.ConfirmApproval(c.Request.Context(), c.Param("token"), body.Pin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPin):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pin"})
		case errors.Is(err, domain.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "approval request not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm approval"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}
