package stats

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/response"
)

// Handler serves dashboard stats for a client.
type Handler struct {
	clients       store.ClientStore
	registrations store.RegistrationStore
	scans         store.ScanStore
	logger        *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(clients store.ClientStore, registrations store.RegistrationStore, scans store.ScanStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{clients: clients, registrations: registrations, scans: scans, logger: logger}
}

// statsResponse is the dashboard payload: registration buckets plus scan
// conversion.
type statsResponse struct {
	Summary
	ConversionRate string `json:"conversion_rate"`
	Scans          int    `json:"scans"`
}

// ClientStats handles GET /clients/:id/stats (admin).
func (h *Handler) ClientStats(c *gin.Context) {
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
	h.serve(c, id)
}

// MyStats handles GET /me/stats.
func (h *Handler) MyStats(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	h.serve(c, clientID)
}

func (h *Handler) serve(c *gin.Context, clientID uuid.UUID) {
	ctx := c.Request.Context()

	regs, err := h.registrations.ListByClient(ctx, clientID)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err), zap.String("client_id", clientID.String()))
		response.Internal(c, "failed to load registrations")
		return
	}
	scans, err := h.scans.ListByClient(ctx, clientID)
	if err != nil {
		h.logger.Error("list scans failed", zap.Error(err), zap.String("client_id", clientID.String()))
		response.Internal(c, "failed to load scans")
		return
	}

	response.OK(c, statsResponse{
		Summary:        Compute(regs, time.Now()),
		ConversionRate: ConversionRate(scans),
		Scans:          len(scans),
	})
}
