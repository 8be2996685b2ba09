package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/haoyun/account-service/internal/application"
	"github.com/haoyun/account-service/pkg/audit"
	"github.com/haoyun/account-service/pkg/response"
	"github.com/haoyun/account-service/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
	Audit  *audit.Publisher
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, pub *audit.Publisher) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Audit: pub}
}

type registerRequest struct {
	UUID        string `json:"uuid" binding:"required"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Bio         string `json:"bio"`
	Role        string `json:"role" binding:"required"`
}

type updateRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Bio         string `json:"bio"`
	Role        string `json:"role" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// publish records an account-activity event, best-effort.
func (h *UserHandler) publish(c *gin.Context, action, uuid, username string) {
	if h.Audit == nil {
		return
	}
	ev := audit.NewEvent(action)
	ev.UserUUID = uuid
	ev.Username = username
	ev.IP = clientIP(c)
	ev.UserAgent = c.GetHeader("User-Agent")
	if err := h.Audit.Publish(c.Request.Context(), ev); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit publish failed")
	}
}

// GetByUsername handles GET /users-n/:username. The response is the full
// stored row; the password field carries the bcrypt hash.
func (h *UserHandler) GetByUsername(c *gin.Context) {
	username := c.Param("username")
	u, err := h.Svc.GetByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.WithError(err).WithField("username", username).Error("error fetching user")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, u)
}

// Register handles POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorDetails(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		UUID:        req.UUID,
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Role:        req.Role,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("username", req.Username).Error("error inserting user")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.publish(c, audit.ActionRegistered, u.UUID, u.Username)
	response.Message(c, http.StatusOK, "User registered successfully")
}

// Update handles PUT /users-u/:uuid. The body is a full-row overwrite of
// all six mutable fields; the response is the row re-read after the write.
func (h *UserHandler) Update(c *gin.Context) {
	uuid := c.Param("uuid")
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorDetails(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateByUUID(c.Request.Context(), uuid, userapp.UpdateInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Role:        req.Role,
	})
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.WithError(err).WithField("uuid", uuid).Error("error updating user")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.publish(c, audit.ActionUpdated, u.UUID, u.Username)
	c.JSON(http.StatusOK, u)
}

// Login handles POST /login. Unknown username and wrong password produce
// the same 401 body.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorDetails(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userapp.ErrInvalidCredentials) {
			h.publish(c, audit.ActionLoginFailed, "", req.Username)
			response.Error(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.Logger.WithError(err).WithField("username", req.Username).Error("error logging in")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.publish(c, audit.ActionLoggedIn, u.UUID, u.Username)
	c.JSON(http.StatusOK, gin.H{"message": "User logged in successfully", "user": u})
}

// Search handles GET /users-s?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size := 10
	if s := c.Query("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = n
		}
	}
	res, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("q", q).Error("error searching users")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": res})
}
