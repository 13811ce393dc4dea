package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/identity"
)

// AuthHandler exposes the identity provider's capability surface. All
// real credential handling lives behind identity.Provider.
type AuthHandler struct {
	provider identity.Provider
}

func NewAuthHandler(provider identity.Provider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

type credentialsReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	user, err := h.provider.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_credentials"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	sess, err := h.provider.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.BearerToken(c); token != "" {
		_ = h.provider.Logout(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.provider.CurrentUser(c.Request.Context(), middleware.BearerToken(c))
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type passwordResetReq struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordReset always answers 202 so the endpoint cannot be used to
// probe which addresses are registered.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req passwordResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	_ = h.provider.SendPasswordReset(c.Request.Context(), req.Email)
	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists, a reset link has been sent"})
}
