package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/response"
	"github.com/scanlead/backend/pkg/utils"
)

// Gin context keys set by the JWT middleware and read by handlers.
const (
	ContextClientID = "client_id"
	ContextRole     = "client_role"
	ContextEmail    = "client_email"
)

// AdminRepairer restores the reserved admin profile when the account is known
// to the identity layer but its client record is missing.
type AdminRepairer interface {
	RepairAdmin(ctx context.Context, email string) error
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the body for POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token  string      `json:"token"`
	Client interface{} `json:"client"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	clients store.ClientStore
	jwt     *JWTService
	repair  AdminRepairer
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(clients store.ClientStore, jwt *JWTService, repair AdminRepairer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{clients: clients, jwt: jwt, repair: repair, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	client, err := h.clients.GetByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) && h.repair != nil {
		// Account may exist in the identity layer with its profile record
		// gone; re-bootstrap the admin profile and look again, best effort.
		if rerr := h.repair.RepairAdmin(c.Request.Context(), req.Email); rerr == nil {
			client, err = h.clients.GetByEmail(c.Request.Context(), req.Email)
		} else {
			h.logger.Warn("admin profile repair failed", zap.Error(rerr))
		}
	}
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, client.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(client.ID, client.Email, string(client.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, Client: client.ToPublic()})
}

// ChangePassword handles POST /auth/change-password (JWT required).
func (h *Handler) ChangePassword(c *gin.Context) {
	clientID := c.MustGet(ContextClientID).(uuid.UUID)
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	client, err := h.clients.GetByID(c.Request.Context(), clientID)
	if err != nil {
		response.Unauthorized(c, "account not found")
		return
	}
	if !utils.CheckPassword(req.OldPassword, client.Password) {
		response.Unauthorized(c, "old password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.clients.UpdatePassword(c.Request.Context(), clientID, hash); err != nil {
		h.logger.Error("update password failed", zap.Error(err), zap.String("client_id", clientID.String()))
		response.Internal(c, "failed to change password")
		return
	}
	response.OK(c, gin.H{"message": "password changed"})
}
