package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martijn/cmdgate/internal/api/dto"
	"github.com/martijn/cmdgate/internal/core/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Token handles POST /auth/token, exchanging client credentials for a
// bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	token, err := h.authService.AuthenticateClient(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid client credentials",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   service.TokenExpirationHours * 3600,
	})
}
