package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-auth/internal/application"
	repo "github.com/oksasatya/go-ecommerce-auth/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-auth/internal/interface/middleware"
	"github.com/oksasatya/go-ecommerce-auth/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-auth/pkg/response"
	"github.com/oksasatya/go-ecommerce-auth/pkg/validation"
)

type AuthHandler struct {
	Auth    *application.AuthService
	Users   *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
	audit   auditor
}

func NewAuthHandler(auth *application.AuthService, users *application.Service, audit repo.AuditRepository, logger *logrus.Logger, cookies *helpers.Manager) *AuthHandler {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &AuthHandler{
		Auth:    auth,
		Users:   users,
		Logger:  logger,
		Cookies: cookies,
		audit:   auditor{repo: audit, logger: logger},
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type confirmResetRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Auth.Register(requestContext(c), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if u != nil {
		meta := map[string]any{"activation_sent": err == nil}
		h.audit.record(c, u.ID, u.Email, "register", meta)
	}
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserView(u), "registered; check your email to activate the account", nil)
}

// ResendActivation POST /api/auth/activate/resend
func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.ResendActivation(requestContext(c), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.audit.record(c, "", req.Email, "activation_resend", nil)
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "activation email sent", nil)
}

// Activate GET /api/auth/activate?token=
func (h *AuthHandler) Activate(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"token": "is required"})
		return
	}
	u, err := h.Auth.Activate(c.Request.Context(), token)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.audit.record(c, u.ID, u.Email, "activate", nil)
	response.Success(c, http.StatusOK, toUserView(u), "account activated", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.record(c, "", req.Email, "login_failed", map[string]any{"reason": err.Error()})
		writeError(c, h.Logger, err)
		return
	}
	pair := res.Tokens
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	h.audit.record(c, res.User.ID, res.User.Email, "login", nil)
	response.Success(c, http.StatusOK, gin.H{
		"user":          toUserView(res.User),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/auth/refresh, token from cookie or body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, _ := c.Cookie(helpers.RefreshCookie)
	if refresh == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		refresh = req.RefreshToken
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, uid, err := h.Users.Refresh(c.Request.Context(), refresh)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	h.audit.record(c, uid, "", "refresh", nil)
	response.Success[any](c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// RequestPasswordReset POST /api/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Auth.RequestPasswordReset(requestContext(c), req.Email)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			h.audit.record(c, "", req.Email, "reset_request_unknown", nil)
		}
		writeError(c, h.Logger, err)
		return
	}
	h.audit.record(c, "", req.Email, "reset_request", nil)
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a reset link was sent", nil)
}

// ConfirmPasswordReset POST /api/auth/reset-password/:uid/:token
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ref := c.Param("uid")
	err := h.Auth.ConfirmPasswordReset(c.Request.Context(), application.ConfirmResetInput{
		UserRef:         ref,
		Token:           c.Param("token"),
		NewPassword:     req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	uid, _ := helpers.DecodeUserRef(ref)
	h.audit.record(c, uid, "", "reset_confirm", nil)
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// ChangePassword POST /api/auth/password/change (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	h.audit.record(c, uid, "", "password_change", nil)
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed; sign in again", nil)
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Users.Logout(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("drop session failed")
	}
	h.Cookies.Clear(c)
	h.audit.record(c, uid, "", "logout", nil)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}
