package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/service"
)

// MediaHandler handles media search and library endpoints.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new media handler.
// Parameters:
//   - mediaService: media service instance.
// Returns:
//   - *MediaHandler: initialized handler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// Search handles GET /api/v1/media. It proxies a live search against
// the configured provider and returns normalized resources.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MediaHandler) Search(c *gin.Context) {
	query := c.Query("query")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	result, err := h.mediaService.SearchProvider(c.Request.Context(), query, page, perPage)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Provider search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Library handles GET /api/v1/media/library, listing locally mirrored
// resources.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MediaHandler) Library(c *gin.Context) {
	var resourceType domain.ResourceType
	if t := c.Query("type"); t != "" {
		resourceType = domain.ResourceType(t)
		if !resourceType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid type: " + t,
			})
			return
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	result, err := h.mediaService.ListLibrary(c.Request.Context(), resourceType, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list library: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
