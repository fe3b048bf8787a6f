// Package registrations implements the public landing-page flow that turns a
// QR scan into a captured lead, plus the dashboard listing and CSV export.
package registrations

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/realtime"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/queue"
	"github.com/scanlead/backend/pkg/response"
	"github.com/scanlead/backend/pkg/utils"
)

// SubmitRequest is the body for POST /register/:code.
type SubmitRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone"`
	TicketType string `json:"ticket_type"`
	ScanID     string `json:"scan_id"` // from the landing GET; links the scan to its conversion
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	clients       store.ClientStore
	registrations store.RegistrationStore
	scans         store.ScanStore
	queue         *queue.Queue  // nil in demo mode: no confirmation email job
	hub           *realtime.Hub // nil when the live feed is disabled
	logger        *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(clients store.ClientStore, registrations store.RegistrationStore, scans store.ScanStore, q *queue.Queue, hub *realtime.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{clients: clients, registrations: registrations, scans: scans, queue: q, hub: hub, logger: logger}
}

// ShowLanding handles GET /register/:code. Resolves the owning client and
// records the scan event. An unrecognized token is a terminal invalid-code
// state: no form, no write. (The write path below differs deliberately; see
// Submit.)
func (h *Handler) ShowLanding(c *gin.Context) {
	code := c.Param("code")
	client, err := h.clients.GetByQRCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "invalid code")
			return
		}
		response.Internal(c, "failed to resolve code")
		return
	}

	body := gin.H{
		"client_name":  client.Name,
		"qr_code":      code,
		"fields":       []string{"name", "email", "phone", "ticket_type"},
		"required":     []string{"name", "email"},
		"ticket_types": []string{"general", "vip", "family"},
	}

	scan := &models.Scan{ClientID: client.ID}
	if err := h.scans.Record(c.Request.Context(), scan); err != nil {
		// A lost scan skews stats but must not block the visitor. Leave
		// scan_id out so the form does not echo a zero id into Submit.
		h.logger.Warn("record scan failed", zap.Error(err), zap.String("client_id", client.ID.String()))
	} else {
		body["scan_id"] = scan.ID
		if h.hub != nil {
			h.hub.BroadcastAndPublish(client.ID, realtime.EventScanRecorded, gin.H{
				"scan_id": scan.ID,
				"at":      scan.At,
			})
		}
	}

	response.OK(c, body)
}

// Submit handles POST /register/:code. Validation happens before any store
// write. An unrecognized token on this path attaches the lead to the reserved
// admin owner instead of rejecting: a stale printed QR poster must not lose a
// registration the visitor already typed in. No admin owner at all is a
// configuration error and fails loudly.
func (h *Handler) Submit(c *gin.Context) {
	code := c.Param("code")

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}
	if !utils.IsValidEmail(req.Email) {
		response.BadRequest(c, "email must look like local@domain.tld")
		return
	}

	owner, err := h.resolveOwner(c, code)
	if err != nil {
		if errors.Is(err, store.ErrNoFallbackOwner) {
			h.logger.Error("registration has no owner and no admin fallback exists", zap.String("qr_code", code))
			response.Internal(c, "registration cannot be accepted: system not initialized")
			return
		}
		response.Internal(c, "failed to resolve owner")
		return
	}

	reg := &models.Registration{
		ClientID:   owner.ID,
		QRCode:     code,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      strings.TrimSpace(req.Phone),
		TicketType: strings.TrimSpace(req.TicketType),
	}
	if err := h.registrations.Create(c.Request.Context(), reg); err != nil {
		h.logger.Error("create registration failed", zap.Error(err), zap.String("qr_code", code))
		response.Internal(c, "failed to register")
		return
	}

	if req.ScanID != "" {
		if scanID, perr := uuid.Parse(req.ScanID); perr == nil {
			if err := h.scans.MarkConverted(c.Request.Context(), scanID); err != nil && !errors.Is(err, store.ErrNotFound) {
				h.logger.Warn("mark scan converted failed", zap.Error(err))
			}
		}
	}

	if h.queue != nil {
		payload := queue.ConfirmationEmailPayload{
			ClientID:       owner.ID,
			ClientName:     owner.Name,
			RegistrationID: reg.ID,
			Recipient:      reg.Email,
		}
		if err := h.queue.EnqueueConfirmationEmail(c.Request.Context(), payload); err != nil {
			h.logger.Warn("enqueue confirmation email failed", zap.Error(err), zap.String("registration_id", reg.ID.String()))
		}
	}

	if h.hub != nil {
		h.hub.BroadcastAndPublish(owner.ID, realtime.EventRegistrationCreated, reg)
	}

	c.JSON(http.StatusCreated, response.Body{Success: true, Data: gin.H{
		"message":      "thank you for registering",
		"registration": reg,
	}})
}

// resolveOwner maps a QR token to its client, falling back to the reserved
// admin account for unknown tokens.
func (h *Handler) resolveOwner(c *gin.Context, code string) (*models.Client, error) {
	owner, err := h.clients.GetByQRCode(c.Request.Context(), code)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	admin, err := h.clients.GetAdmin(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNoFallbackOwner
		}
		return nil, err
	}
	return admin, nil
}

// ListByClient handles GET /clients/:id/registrations. Admin only.
func (h *Handler) ListByClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	h.list(c, id)
}

// MyRegistrations handles GET /me/registrations.
func (h *Handler) MyRegistrations(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	h.list(c, clientID)
}

func (h *Handler) list(c *gin.Context, clientID uuid.UUID) {
	list, err := h.registrations.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		response.Internal(c, "failed to load registrations")
		return
	}
	if list == nil {
		list = []models.Registration{}
	}
	response.OK(c, list)
}

// ExportCSV handles GET /me/registrations/export. Streams the client's
// registrations as a CSV attachment.
func (h *Handler) ExportCSV(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	client, err := h.clients.GetByID(c.Request.Context(), clientID)
	if err != nil {
		response.NotFound(c, "account not found")
		return
	}
	list, err := h.registrations.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		response.Internal(c, "failed to load registrations")
		return
	}

	filename, body := BuildCSV(client.Name, list, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", body)
}
