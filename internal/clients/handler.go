package clients

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/qrcode"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/response"
)

// QRImageStore uploads rendered QR images and returns a presigned URL.
type QRImageStore interface {
	PutQRImage(ctx context.Context, clientID string, png []byte) (string, error)
}

// Handler handles client management HTTP endpoints.
type Handler struct {
	svc      *Service
	renderer qrcode.Renderer
	images   QRImageStore // nil when S3 is not configured; image is served inline
	baseURL  string
	logger   *zap.Logger
}

// NewHandler creates a clients handler.
func NewHandler(svc *Service, renderer qrcode.Renderer, images QRImageStore, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, renderer: renderer, images: images, baseURL: baseURL, logger: logger}
}

// CreateRequest is the body for POST /clients (admin).
type CreateRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Password         string `json:"password"`
	GeneratePassword bool   `json:"generate_password"`
}

// UpdateURLRequest is the body for PATCH /me.
type UpdateURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// Create handles POST /clients. Admin only.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	client, plainPassword, err := h.svc.Create(c.Request.Context(), CreateParams{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Password:         req.Password,
		GeneratePassword: req.GeneratePassword,
	})
	if err != nil {
		if store.IsValidation(err) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("create client failed", zap.Error(err))
		response.Internal(c, "failed to create client")
		return
	}
	out := gin.H{"client": client.ToPublic()}
	if plainPassword != "" {
		// Returned exactly once; not stored anywhere in the clear.
		out["generated_password"] = plainPassword
	}
	response.Created(c, out)
}

// List handles GET /clients. Admin only.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list clients")
		return
	}
	out := make([]models.ClientPublic, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToPublic())
	}
	response.OK(c, out)
}

// Get handles GET /clients/:id. Admin only. Includes the registration count
// shown by the delete confirmation dialog.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	client, count, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to load client")
		return
	}
	response.OK(c, gin.H{"client": client.ToPublic(), "registration_count": count})
}

// Delete handles DELETE /clients/:id. Admin only. Registrations cascade with
// the client; the response reports how many went with it.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	cascaded, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "client not found")
			return
		}
		h.logger.Error("delete client failed", zap.Error(err), zap.String("client_id", id.String()))
		response.Internal(c, "failed to delete client")
		return
	}
	response.OK(c, gin.H{"deleted": id, "cascaded_registrations": cascaded})
}

// Me handles GET /me. Returns the authenticated client's own profile.
func (h *Handler) Me(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	client, count, err := h.svc.Get(c.Request.Context(), clientID)
	if err != nil {
		response.NotFound(c, "account not found")
		return
	}
	response.OK(c, gin.H{"client": client.ToPublic(), "registration_count": count})
}

// UpdateMyURL handles PATCH /me. Only the landing-page path is editable.
func (h *Handler) UpdateMyURL(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	var req UpdateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "url required")
		return
	}
	if err := h.svc.UpdateURL(c.Request.Context(), clientID, req.URL); err != nil {
		if store.IsValidation(err) {
			response.BadRequest(c, err.Error())
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.Internal(c, "failed to update url")
		return
	}
	response.OK(c, gin.H{"url": req.URL})
}

// MyQR handles GET /me/qr. Renders the client's QR image for the landing URL.
// With S3 configured the PNG is uploaded once and a presigned URL returned;
// otherwise the image is served inline.
func (h *Handler) MyQR(c *gin.Context) {
	clientID := c.MustGet(auth.ContextClientID).(uuid.UUID)
	client, _, err := h.svc.Get(c.Request.Context(), clientID)
	if err != nil {
		response.NotFound(c, "account not found")
		return
	}

	content := h.baseURL + client.URL
	png, err := h.renderer.RenderPNG(content, 512)
	if err != nil {
		h.logger.Error("render qr failed", zap.Error(err), zap.String("client_id", clientID.String()))
		response.Internal(c, "failed to render qr image")
		return
	}

	if h.images != nil {
		url, err := h.images.PutQRImage(c.Request.Context(), client.ID.String(), png)
		if err != nil {
			h.logger.Warn("qr image upload failed, serving inline", zap.Error(err))
		} else {
			response.OK(c, gin.H{"url": url, "content": content})
			return
		}
	}
	c.Data(http.StatusOK, "image/png", png)
}
