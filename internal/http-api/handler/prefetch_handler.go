package handler

import (
	"net/http"

	"npcfinder/internal/http-api/middleware"
	"npcfinder/internal/prefetch"
	"npcfinder/internal/shared"

	"github.com/gin-gonic/gin"
)

// PrefetchHandler lets clients hint that a library view is about to be
// opened (hover, focus). Triggers are debounced server-side; the response
// is always 202 so clients can fire and forget.
type PrefetchHandler struct {
	scheduler *prefetch.Scheduler
}

func NewPrefetchHandler(scheduler *prefetch.Scheduler) *PrefetchHandler {
	return &PrefetchHandler{scheduler: scheduler}
}

func (h *PrefetchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:kind", h.Trigger)
}

func (h *PrefetchHandler) Trigger(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	kind, ok := shared.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown media kind"})
		return
	}

	h.scheduler.Trigger(kind, userID)
	c.JSON(http.StatusAccepted, gin.H{"message": "prefetch scheduled"})
}
