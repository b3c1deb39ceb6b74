package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersvc "pcparts-backend/internal/service/user"
)

type authHandler struct {
	users UserService
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// authResponse pairs the account with its issued tokens.
type authResponse struct {
	User   interface{}        `json:"user"`
	Tokens *usersvc.TokenPair `json:"tokens"`
}

func (h *authHandler) register(c *gin.Context) {
	var req usersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "account created", u)
}

func (h *authHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email and password required")
		return
	}
	u, tokens, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, authResponse{User: u, Tokens: tokens})
}

func (h *authHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "refreshToken required")
		return
	}
	u, tokens, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, authResponse{User: u, Tokens: tokens})
}

func (h *authHandler) logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "logged out", nil)
}

func (h *authHandler) profile(c *gin.Context) {
	respond(c, http.StatusOK, currentUser(c))
}

func (h *authHandler) updateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.users.Update(c.Request.Context(), currentUser(c).ID, usersvc.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *authHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "currentPassword and newPassword required")
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), currentUser(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password changed", nil)
}
