package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedscope/feedscope/app/database"
	"github.com/feedscope/feedscope/app/hub"
)

type Handler struct {
	hub      *hub.Hub
	subRepo  database.SubscriptionRepository
	itemRepo database.ItemRepository
}

func NewHandler(hub *hub.Hub, subRepo database.SubscriptionRepository,
	itemRepo database.ItemRepository) *Handler {
	return &Handler{
		hub:      hub,
		subRepo:  subRepo,
		itemRepo: itemRepo,
	}
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind and source are required"})
		return
	}

	result, err := h.hub.Subscribe(c.Request.Context(), req.Kind, req.Source)
	if err != nil {
		h.renderError(c, "subscribe", err)
		return
	}

	status := http.StatusCreated
	if result.Status == "already_exists" {
		status = http.StatusOK
	}

	c.JSON(status, gin.H{
		"status":       result.Status,
		"subscription": toSubscriptionResponse(result.Subscription),
	})
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind and source are required"})
		return
	}

	result, err := h.hub.Unsubscribe(c.Request.Context(), req.Kind, req.Source)
	if err != nil {
		h.renderError(c, "unsubscribe", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "removed",
		"subscription":  toSubscriptionResponse(result.Subscription),
		"items_removed": result.ItemsRemoved,
	})
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.hub.ListSubscriptions(c.Request.Context())
	if err != nil {
		h.renderError(c, "list_subscriptions", err)
		return
	}

	responses := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, toSubscriptionResponse(sub))
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": responses,
		"total":         len(responses),
	})
}

func (h *Handler) CheckFeeds(c *gin.Context) {
	var req checkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	report, err := h.hub.CheckFeeds(c.Request.Context(), req.Kind)
	if err != nil {
		h.renderError(c, "check", err)
		return
	}

	sources := make([]sourceOutcomeResponse, 0, len(report.Sources))
	for _, outcome := range report.Sources {
		sources = append(sources, sourceOutcomeResponse{
			Kind:        outcome.SourceKind,
			Source:      outcome.SourceID,
			DisplayName: outcome.DisplayName,
			NewItems:    outcome.NewItems,
			Error:       outcome.Error,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"checked":         report.Checked,
		"total_new_items": report.TotalNewItems,
		"sources":         sources,
	})
}

func (h *Handler) GetItems(c *gin.Context) {
	items, err := h.hub.GetFeedItems(c.Request.Context(), c.Query("kind"), parseLimit(c))
	if err != nil {
		h.renderError(c, "get_items", err)
		return
	}

	responses := toItemResponses(items)
	c.JSON(http.StatusOK, gin.H{
		"items": responses,
		"total": len(responses),
	})
}

func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter q"})
		return
	}

	items, err := h.hub.SearchFeeds(c.Request.Context(), query, c.Query("kind"), parseLimit(c))
	if err != nil {
		h.renderError(c, "search", err)
		return
	}

	responses := toItemResponses(items)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": responses,
		"total":   len(responses),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if subCount, err := h.subRepo.Count(); err == nil {
		health["subscriptions"] = subCount
	}
	if itemCount, err := h.itemRepo.Count(); err == nil {
		health["items"] = itemCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) renderError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, hub.ErrInvalidSourceKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, hub.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
