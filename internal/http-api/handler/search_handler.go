package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"npcfinder/internal/search"
	"npcfinder/internal/shared"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	registry     search.Registry
	defaultLimit int
}

func NewSearchHandler(registry search.Registry, defaultLimit int) *SearchHandler {
	return &SearchHandler{registry: registry, defaultLimit: defaultLimit}
}

func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:kind", h.Search)
}

// Search proxies a catalog query to the kind's external provider.
func (h *SearchHandler) Search(c *gin.Context) {
	kind, ok := shared.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown media kind"})
		return
	}
	provider, ok := h.registry[kind]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown media kind"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := provider.Search(ctx, query, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}
