package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"npcfinder/internal/http-api/dto"
	"npcfinder/internal/http-api/middleware"
	"npcfinder/internal/http-api/service"
	"npcfinder/internal/shared"

	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	registry service.LibraryRegistry
}

func NewLibraryHandler(registry service.LibraryRegistry) *LibraryHandler {
	return &LibraryHandler{registry: registry}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:kind", h.List)
	rg.POST("/:kind", h.Add)
	rg.PATCH("/:kind/:id", h.Update)
	rg.DELETE("/:kind/:id", h.Remove)
}

// kindService resolves the :kind path parameter to its service. Writes the
// error response itself so callers can plain-return on nil.
func (h *LibraryHandler) kindService(c *gin.Context) (service.LibraryService, shared.MediaKind) {
	kind, ok := shared.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown media kind"})
		return nil, ""
	}
	svc, ok := h.registry[kind]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown media kind"})
		return nil, ""
	}
	return svc, kind
}

// listQueryFromContext pulls the filter/sort/page parameters off the query
// string. Zero values mean "use stored preferences".
func listQueryFromContext(c *gin.Context) service.ListQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return service.ListQuery{
		Page:     page,
		PageSize: pageSize,
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}
}

func (h *LibraryHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	svc, _ := h.kindService(c)
	if svc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := svc.List(ctx, userID, listQueryFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromLibraryPage(page))
}

func (h *LibraryHandler) Add(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	svc, _ := h.kindService(c)
	if svc == nil {
		return
	}

	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := svc.Add(ctx, userID, service.AddItemInput{
		ExternalID:  req.ExternalID,
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		ReleaseDate: req.ReleaseDate,
		Genre:       req.Genre,
		Artist:      req.Artist,
		MediaType:   req.MediaType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyInLibrary):
			c.JSON(http.StatusConflict, gin.H{"error": "item already in library"})
		case errors.Is(err, service.ErrInvalidExternal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid external id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *LibraryHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	svc, _ := h.kindService(c)
	if svc == nil {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := svc.Update(ctx, userID, id, service.UpdateItemInput{
		Consumed: req.Consumed,
		Rating:   req.Rating,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotInLibrary):
			c.JSON(http.StatusNotFound, gin.H{"error": "item not in library"})
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *LibraryHandler) Remove(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	svc, _ := h.kindService(c)
	if svc == nil {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := svc.Remove(ctx, userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotInLibrary) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not in library"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.RemovedItemResponse{Removed: *item})
}
