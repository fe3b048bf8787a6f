// Package emaillogs exposes the confirmation email log written by the
// background worker.
package emaillogs

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	clients   store.ClientStore
	emailLogs store.EmailLogStore
	logger    *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(clients store.ClientStore, emailLogs store.EmailLogStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{clients: clients, emailLogs: emailLogs, logger: logger}
}

// ListByClient handles GET /clients/:id/emails (admin).
func (h *Handler) ListByClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	if _, err := h.clients.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to load client")
		return
	}
	h.list(c, id)
}

// MyEmails handles GET /me/emails.
func (h *Handler) MyEmails(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	h.list(c, clientID)
}

func (h *Handler) list(c *gin.Context, clientID uuid.UUID) {
	logs, err := h.emailLogs.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err), zap.String("client_id", clientID.String()))
		response.Internal(c, "failed to load email logs")
		return
	}
	if logs == nil {
		logs = []models.EmailLog{}
	}
	response.OK(c, logs)
}
