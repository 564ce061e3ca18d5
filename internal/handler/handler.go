package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"tradegate/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ticketLister interface {
	ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type accessReader interface {
	Status(ctx context.Context, userID int64) (*domain.User, error)
}

// Handler exposes a small operational HTTP surface next to the bot: health,
// open tickets and per-user access state for support tooling.
type Handler struct {
	tracer  trace.Tracer
	tickets ticketLister
	access  accessReader
}

func New(tracer trace.Tracer, tickets ticketLister, access accessReader) *Handler {
	return &Handler{tracer: tracer, tickets: tickets, access: access}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/tickets/open", h.GetOpenTickets)
	r.GET("/api/users/:id/access", h.GetUserAccess)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetOpenTickets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-open-tickets")
	defer span.End()

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 200"})
			return
		}
		limit = v
	}

	tickets, err := h.tickets.ListOpen(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}

	out := make([]gin.H, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, gin.H{
			"ticket_id":  t.ID,
			"user_id":    t.UserID,
			"created_at": t.CreatedAt.UTC(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tickets": out, "count": len(out)})
}

func (h *Handler) GetUserAccess(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-user-access")
	defer span.End()

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a positive integer"})
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID))

	user, err := h.access.Status(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      user.ID,
		"whitelisted":  user.IsWhitelisted,
		"access_until": user.AccessUntil,
		"active":       user.AccessActive(time.Now().UTC()),
	})
}
