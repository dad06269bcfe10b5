package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/service"
	"gorm.io/gorm"
)

// StoryHandler handles story listing and mutation endpoints.
type StoryHandler struct {
	storyService *service.StoryService
}

// NewStoryHandler creates a new story handler.
// Parameters:
//   - storyService: story service instance.
// Returns:
//   - *StoryHandler: initialized handler.
func NewStoryHandler(storyService *service.StoryService) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
	}
}

// List handles GET /api/v1/stories.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) List(c *gin.Context) {
	query := domain.StoryQuery{
		SearchTerm: c.Query("search"),
	}

	if status := c.Query("status"); status != "" {
		s := domain.StoryStatus(status)
		if s != domain.StoryStatusAll && !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status: " + status,
			})
			return
		}
		query.Status = s
	}

	if orderBy := c.Query("orderby"); orderBy != "" {
		o := domain.SortOption(orderBy)
		if !o.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid orderby: " + orderBy,
			})
			return
		}
		query.OrderBy = o
	}

	if order := c.Query("order"); order != "" {
		d := domain.SortDirection(order)
		if !d.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid order: " + order,
			})
			return
		}
		query.Order = d
	}

	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "0"))

	result, err := h.storyService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list stories: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

type createStoryRequest struct {
	Title   string             `json:"title" binding:"required"`
	Excerpt string             `json:"excerpt"`
	Author  string             `json:"author"`
	Status  domain.StoryStatus `json:"status"`
	Meta    domain.MetaMap     `json:"meta"`
}

// Create handles POST /api/v1/stories.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) Create(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status: " + string(req.Status),
		})
		return
	}

	story, err := h.storyService.Create(c.Request.Context(), service.CreateStoryInput{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Author:  req.Author,
		Status:  req.Status,
		Meta:    req.Meta,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create story: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, story)
}

// Get handles GET /api/v1/stories/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	story, err := h.storyService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Story not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get story: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, story)
}

type updateStoryRequest struct {
	Title  *string             `json:"title"`
	Status *domain.StoryStatus `json:"status"`
}

// Update handles PATCH /api/v1/stories/:id. Only the provided fields
// are changed; currently title (rename) and status.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	var req updateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if req.Title == nil && req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Nothing to update: provide title or status",
		})
		return
	}

	ctx := c.Request.Context()

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Title must not be empty",
			})
			return
		}
		if err := h.storyService.Rename(ctx, id, *req.Title); err != nil {
			h.writeMutationError(c, err, "Failed to rename story")
			return
		}
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status: " + string(*req.Status),
			})
			return
		}
		if err := h.storyService.UpdateStatus(ctx, id, *req.Status); err != nil {
			h.writeMutationError(c, err, "Failed to update status")
			return
		}
	}

	story, err := h.storyService.Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reload story: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, story)
}

// Duplicate handles POST /api/v1/stories/:id/duplicate.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) Duplicate(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	copy, err := h.storyService.Duplicate(c.Request.Context(), id)
	if err != nil {
		h.writeMutationError(c, err, "Failed to duplicate story")
		return
	}

	c.JSON(http.StatusCreated, copy)
}

// Delete handles DELETE /api/v1/stories/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	if err := h.storyService.Delete(c.Request.Context(), id); err != nil {
		h.writeMutationError(c, err, "Failed to delete story")
		return
	}

	c.Status(http.StatusNoContent)
}

// Counts handles GET /api/v1/stories/counts.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StoryHandler) Counts(c *gin.Context) {
	counts, err := h.storyService.StatusCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count stories: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts": counts,
	})
}

// storyID parses the :id path parameter; on failure it writes a 400
// response and reports false.
func (h *StoryHandler) storyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid story ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// writeMutationError maps a mutation failure to 404 or 500.
func (h *StoryHandler) writeMutationError(c *gin.Context, err error, message string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Story not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": message + ": " + err.Error(),
	})
}
