package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itnnovator/annota-backend/internal/auth"
	fbdomain "github.com/itnnovator/annota-backend/internal/feedback/domain"
	"github.com/itnnovator/annota-backend/internal/projects/domain"
	"github.com/itnnovator/annota-backend/internal/projects/service"
)

type Handler struct {
	projects *service.ProjectService
}

func NewHandler(projects *service.ProjectService) *Handler {
	return &Handler{projects: projects}
}

// Register registers the owner project routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/projects", h.CreateProject)
	rg.GET("/projects", h.ListProjects)
	rg.GET("/projects/:id", h.GetProject)
	rg.DELETE("/projects/:id", h.DeleteProject)
	rg.POST("/projects/:id/share", h.ShareProject)
	rg.GET("/projects/:id/share", h.GetShareLink)
	rg.DELETE("/projects/:id/share", h.RevokeShareLink)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var body struct {
		Name    string `json:"name"`
		BaseURL string `json:"baseUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), auth.OwnerDBID(c), service.CreateProjectInput{
		Name:    body.Name,
		BaseURL: body.BaseURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) || errors.Is(err, domain.ErrInvalidBaseURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), auth.OwnerDBID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), auth.OwnerDBID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	err := h.projects.Delete(c.Request.Context(), auth.OwnerDBID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ShareProject issues (or rotates) the public feedback link for a project.
func (h *Handler) ShareProject(c *gin.Context) {
	link, err := h.projects.ShareLink(c.Request.Context(), auth.OwnerDBID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create share link"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"link": link})
}

func (h *Handler) GetShareLink(c *gin.Context) {
	link, err := h.projects.GetLink(c.Request.Context(), auth.OwnerDBID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, fbdomain.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "share link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get share link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *Handler) RevokeShareLink(c *gin.Context) {
	err := h.projects.RevokeLink(c.Request.Context(), auth.OwnerDBID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, fbdomain.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "share link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke share link"})
		return
	}
	c.Status(http.StatusNoContent)
}
