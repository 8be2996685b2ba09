package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/haoyun/account-service/internal/interface/http"
)

type VerificationModule struct {
	Handler *handlers.VerificationHandler
}

func NewVerificationModule(h *handlers.VerificationHandler) *VerificationModule {
	return &VerificationModule{Handler: h}
}

func (m *VerificationModule) Register(rg *gin.RouterGroup) {
	rg.POST("/send-verification-code", m.Handler.Send)
}
