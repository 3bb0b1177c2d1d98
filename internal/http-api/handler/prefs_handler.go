package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"npcfinder/internal/http-api/dto"
	"npcfinder/internal/http-api/middleware"
	"npcfinder/internal/prefs"
	"npcfinder/internal/shared"

	"github.com/gin-gonic/gin"
)

// PrefsHandler exposes per-namespace list preferences (page size, filter,
// sort) so they survive across sessions and devices.
type PrefsHandler struct {
	store *prefs.Store
}

func NewPrefsHandler(store *prefs.Store) *PrefsHandler {
	return &PrefsHandler{store: store}
}

func (h *PrefsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:namespace", h.Get)
	rg.PUT("/:namespace", h.Put)
}

// validNamespace accepts "library:<kind>" and "recommendations:<kind>".
func validNamespace(ns string) bool {
	parts := strings.SplitN(ns, ":", 2)
	if len(parts) != 2 {
		return false
	}
	if parts[0] != "library" && parts[0] != "recommendations" {
		return false
	}
	_, ok := shared.ParseKind(parts[1])
	return ok
}

func (h *PrefsHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	ns := c.Param("namespace")
	if !validNamespace(ns) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown namespace"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	p := h.store.Load(ctx, userID, ns, prefs.Prefs{PageSize: 20})
	c.JSON(http.StatusOK, p)
}

func (h *PrefsHandler) Put(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	ns := c.Param("namespace")
	if !validNamespace(ns) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown namespace"})
		return
	}

	var req dto.PrefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	p := prefs.Prefs{PageSize: req.PageSize, Filter: req.Filter, Sort: req.Sort}
	h.store.Save(ctx, userID, ns, p)
	c.JSON(http.StatusOK, p)
}
