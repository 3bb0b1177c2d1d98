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

type RecommendationHandler struct {
	registry service.RecommendationRegistry
	summary  *service.SummaryService
}

func NewRecommendationHandler(registry service.RecommendationRegistry, summary *service.SummaryService) *RecommendationHandler {
	return &RecommendationHandler{registry: registry, summary: summary}
}

func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary", h.Summary)
	rg.POST("/:kind", h.Send)
	rg.GET("/:kind/inbox", h.Inbox)
	rg.GET("/:kind/outbox", h.Outbox)
	rg.PATCH("/:kind/:id", h.UpdateStatus)
	rg.DELETE("/:kind/:id", h.Delete)
}

func (h *RecommendationHandler) kindService(c *gin.Context) (service.RecommendationService, shared.MediaKind) {
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

func (h *RecommendationHandler) Send(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	svc, _ := h.kindService(c)
	if svc == nil {
		return
	}

	var req dto.SendRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	created, err := svc.Send(ctx, userID, service.SendRecommendationInput{
		RecipientIDs:  req.RecipientIDs,
		ExternalID:    req.ExternalID,
		Title:         req.Title,
		ImageURL:      req.ImageURL,
		Artist:        req.Artist,
		SenderComment: req.SenderComment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicatePending):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFriends), errors.Is(err, service.ErrSelfRecommend):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoRecipients):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

func (h *RecommendationHandler) Inbox(c *gin.Context) {
	h.list(c, false)
}

func (h *RecommendationHandler) Outbox(c *gin.Context) {
	h.list(c, true)
}

func (h *RecommendationHandler) list(c *gin.Context, outbox bool) {
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

	fetch := svc.Inbox
	if outbox {
		fetch = svc.Outbox
	}
	p, err := fetch(ctx, userID, listQueryFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromRecommendationPage(p))
}

func (h *RecommendationHandler) UpdateStatus(c *gin.Context) {
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

	var req dto.UpdateRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rec, err := svc.UpdateStatus(ctx, userID, id, service.UpdateRecommendationInput{
		Status:  req.Status,
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecommendationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *RecommendationHandler) Delete(c *gin.Context) {
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

	rec, err := svc.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, service.ErrRecommendationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"retracted": rec})
}

func (h *RecommendationHandler) Summary(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	friends, err := h.summary.Summary(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{Friends: friends})
}
