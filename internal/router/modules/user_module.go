package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/haoyun/account-service/internal/interface/http"
)

// UserModule wires the user-record endpoints:
// GET /users-n/:username, POST /register, PUT /users-u/:uuid, POST /login,
// GET /users-s (search).
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users-n/:username", m.Handler.GetByUsername)
	rg.POST("/register", m.Handler.Register)
	rg.PUT("/users-u/:uuid", m.Handler.Update)
	rg.POST("/login", m.Handler.Login)
	rg.GET("/users-s", m.Handler.Search)
}
