package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/haoyun/account-service/internal/application"
	"github.com/haoyun/account-service/pkg/audit"
	"github.com/haoyun/account-service/pkg/response"
	"github.com/haoyun/account-service/pkg/validation"
)

type VerificationHandler struct {
	Svc    *userapp.VerificationService
	Logger *logrus.Logger
	Audit  *audit.Publisher
}

func NewVerificationHandler(svc *userapp.VerificationService, logger *logrus.Logger, pub *audit.Publisher) *VerificationHandler {
	return &VerificationHandler{Svc: svc, Logger: logger, Audit: pub}
}

type sendVerificationCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	VCode string `json:"vcode" binding:"required"`
}

// Send handles POST /send-verification-code. The HTTP response is not
// written until the dispatch attempt completes.
func (h *VerificationHandler) Send(c *gin.Context) {
	var req sendVerificationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorDetails(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Dispatch(c.Request.Context(), req.Email, req.VCode); err != nil {
		h.Logger.WithError(err).WithField("to", req.Email).Error("error sending email")
		response.Error(c, http.StatusInternalServerError, "Failed to send verification code")
		return
	}
	if h.Audit != nil {
		ev := audit.NewEvent(audit.ActionVerificationSent)
		ev.IP = clientIP(c)
		ev.UserAgent = c.GetHeader("User-Agent")
		ev.Metadata = map[string]any{"to": req.Email}
		if err := h.Audit.Publish(c.Request.Context(), ev); err != nil && h.Logger != nil {
			h.Logger.WithError(err).Warn("audit publish failed")
		}
	}
	response.Message(c, http.StatusOK, "Verification code sent successfully")
}
