package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contentforge/moderation-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	reviewer, err := ah.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{"reviewer": reviewer})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	token, reviewer, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	RespondOK(c, gin.H{
		"access_token": token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"reviewer":     reviewer,
	})
}
