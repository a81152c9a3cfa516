package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardgate.io/app/internal/http/middleware"
	"cardgate.io/app/internal/http/validation"
	"cardgate.io/app/internal/modules/auth"
	"cardgate.io/app/internal/shared/apperr"
)

type AuthHandler struct {
	Auth           *auth.Service
	BootstrapToken string
}

func NewAuthHandler(svc *auth.Service, bootstrapToken string) *AuthHandler {
	return &AuthHandler{Auth: svc, BootstrapToken: bootstrapToken}
}

type issueTokenPayload struct {
	Label string `json:"label" binding:"required,max=64"`
}

// POST /api/v1/auth/tokens
// Guarded by the bootstrap token so the very first API token can be
// minted without an existing one.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	supplied := c.GetHeader("X-Bootstrap-Token")
	if h.BootstrapToken == "" ||
		subtle.ConstantTimeCompare([]byte(supplied), []byte(h.BootstrapToken)) != 1 {
		middleware.Fail(c, apperr.ForbiddenErr("Bootstrap token required."))
		return
	}

	var in issueTokenPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Validation failed.", validation.FromBindError(err, &in)))
		return
	}

	token, err := h.Auth.Issue(c.Request.Context(), in.Label)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "label": in.Label})
}
