package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-auth/internal/application"
	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-auth/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-auth/pkg/response"
)

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// requestContext carries the caller's address and agent into outgoing emails.
func requestContext(c *gin.Context) context.Context {
	return application.WithRequestMeta(c.Request.Context(), application.RequestMeta{
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
}

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorTable = []errorMapping{
	{application.ErrPasswordMismatch, http.StatusBadRequest, "passwords do not match"},
	{application.ErrTokenExpired, http.StatusBadRequest, "activation link expired"},
	{application.ErrTokenMalformed, http.StatusBadRequest, "activation link invalid"},
	{application.ErrAlreadyVerified, http.StatusBadRequest, "account already verified"},
	{application.ErrInvalidToken, http.StatusBadRequest, "reset link invalid or expired"},
	{application.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{application.ErrAccountNotActive, http.StatusForbidden, "account not activated"},
	{application.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{application.ErrDuplicateEmail, http.StatusConflict, "email already registered"},
	{application.ErrDispatch, http.StatusInternalServerError, "email could not be sent"},
}

// statusFor maps a service error to an HTTP status and a client message.
func statusFor(err error) (int, string, any) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "invalid payload", verr.Fields
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.message, m.target.Error()
		}
	}
	return http.StatusInternalServerError, "internal error", nil
}

func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg, details := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
	}
	response.Error[any](c, status, msg, details)
}

// auditor appends auth events; a nil repository disables it.
type auditor struct {
	repo   repo.AuditRepository
	logger *logrus.Logger
}

func (a auditor) record(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if a.repo == nil {
		return
	}
	entry := &entity.AuditLog{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
	if err := a.repo.Insert(c.Request.Context(), entry); err != nil {
		a.logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}
