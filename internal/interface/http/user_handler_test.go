package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/haoyun/account-service/internal/application"
	"github.com/haoyun/account-service/internal/domain/entity"
	"github.com/haoyun/account-service/internal/domain/repository"
	handlers "github.com/haoyun/account-service/internal/interface/http"
	"github.com/haoyun/account-service/internal/router"
	"github.com/haoyun/account-service/internal/router/modules"
	"github.com/haoyun/account-service/pkg/mailer"
	"github.com/haoyun/account-service/pkg/validation"
)

// memRepo is an in-memory UserRepository for handler tests.
type memRepo struct {
	byUUID map[string]*entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{byUUID: map[string]*entity.User{}}
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.byUUID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByUUID(_ context.Context, uuid string) (*entity.User, error) {
	u, ok := r.byUUID[uuid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.byUUID[u.UUID]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	cp := *u
	r.byUUID[u.UUID] = &cp
	return nil
}

func (r *memRepo) UpdateByUUID(_ context.Context, u *entity.User) (*entity.User, error) {
	if _, ok := r.byUUID[u.UUID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	r.byUUID[u.UUID] = &cp
	out := cp
	return &out, nil
}

// failingRepo simulates a store outage.
type failingRepo struct{}

func (failingRepo) GetByUsername(context.Context, string) (*entity.User, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) GetByUUID(context.Context, string) (*entity.User, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) Create(context.Context, *entity.User) error {
	return errors.New("connection refused")
}
func (failingRepo) UpdateByUUID(context.Context, *entity.User) (*entity.User, error) {
	return nil, errors.New("connection refused")
}

// stubSender records calls and returns a fixed error.
type stubSender struct {
	calls int
	err   error
}

func (s *stubSender) Send(context.Context, string, string, string, string) error {
	s.calls++
	return s.err
}

func newTestEngine(repo repository.UserRepository, sender mailer.Sender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := userapp.NewService(repo, nil, 0, logger, nil, "")
	verifySvc := userapp.NewVerificationService(sender, logger, true)

	r := gin.New()
	reg := router.NewRegistry(r)
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(svc, logger, nil)))
	reg.Add(modules.NewVerificationModule(handlers.NewVerificationHandler(verifySvc, logger, nil)))
	reg.RegisterAll()
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestGetUser_NotFound(t *testing.T) {
	r := newTestEngine(newMemRepo(), &stubSender{})

	w := doJSON(t, r, http.MethodGet, "/users-n/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]any{"error": "User not found"}, decode(t, w))
}

func TestGetUser_StoreFailure(t *testing.T) {
	r := newTestEngine(failingRepo{}, &stubSender{})

	w := doJSON(t, r, http.MethodGet, "/users-n/alice", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "Internal server error"}, decode(t, w))
}

func TestRegister_MissingFields(t *testing.T) {
	r := newTestEngine(newMemRepo(), &stubSender{})

	w := doJSON(t, r, http.MethodPost, "/register", map[string]any{
		"uuid": "1", "password": "pw", "email": "a@x.com", "phone_number": "123", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "invalid payload", body["error"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "is required", details["username"])
}

func TestRegister_DuplicateIsStoreError(t *testing.T) {
	r := newTestEngine(newMemRepo(), &stubSender{})

	payload := map[string]any{
		"uuid": "1", "username": "alice", "password": "pw",
		"email": "a@x.com", "phone_number": "123", "bio": "", "role": "user",
	}
	w := doJSON(t, r, http.MethodPost, "/register", payload)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/register", payload)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "Internal server error"}, decode(t, w))
}

func TestLogin_UnknownAndWrongAreIndistinguishable(t *testing.T) {
	repo := newMemRepo()
	r := newTestEngine(repo, &stubSender{})

	w := doJSON(t, r, http.MethodPost, "/register", map[string]any{
		"uuid": "1", "username": "alice", "password": "pw",
		"email": "a@x.com", "phone_number": "123", "bio": "", "role": "user",
	})
	require.Equal(t, http.StatusOK, w.Code)

	wrongPw := doJSON(t, r, http.MethodPost, "/login", map[string]any{"username": "alice", "password": "wrong"})
	unknown := doJSON(t, r, http.MethodPost, "/login", map[string]any{"username": "nobody", "password": "pw"})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Equal(t, map[string]any{"error": "Invalid username or password"}, decode(t, wrongPw))
}

func TestUpdate_UnknownUUID(t *testing.T) {
	r := newTestEngine(newMemRepo(), &stubSender{})

	w := doJSON(t, r, http.MethodPut, "/users-u/999", map[string]any{
		"username": "alice", "password": "pw", "email": "a@x.com",
		"phone_number": "123", "bio": "", "role": "user",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]any{"error": "User not found"}, decode(t, w))
}

// Walks the documented lifecycle: register, fetch, fail a login, succeed a
// login, update, fetch again.
func TestAccountLifecycle(t *testing.T) {
	r := newTestEngine(newMemRepo(), &stubSender{})

	w := doJSON(t, r, http.MethodPost, "/register", map[string]any{
		"uuid": "1", "username": "alice", "password": "pw",
		"email": "a@x.com", "phone_number": "123", "bio": "", "role": "user",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"message": "User registered successfully"}, decode(t, w))

	w = doJSON(t, r, http.MethodGet, "/users-n/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	row := decode(t, w)
	assert.Equal(t, "1", row["uuid"])
	assert.Equal(t, "alice", row["username"])
	assert.Equal(t, "a@x.com", row["email"])
	assert.Equal(t, "123", row["phone_number"])
	assert.Equal(t, "", row["bio"])
	assert.Equal(t, "user", row["role"])
	// The password field is present but carries the bcrypt hash.
	hash := row["password"].(string)
	assert.NotEqual(t, "pw", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))

	w = doJSON(t, r, http.MethodPost, "/login", map[string]any{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", map[string]any{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "User logged in successfully", body["message"])
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])

	w = doJSON(t, r, http.MethodPut, "/users-u/1", map[string]any{
		"username": "alice2", "password": "pw", "email": "a@x.com",
		"phone_number": "123", "bio": "updated", "role": "user",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	assert.Equal(t, "1", updated["uuid"])
	assert.Equal(t, "alice2", updated["username"])
	assert.Equal(t, "updated", updated["bio"])

	w = doJSON(t, r, http.MethodGet, "/users-n/alice2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/users-n/alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendVerificationCode(t *testing.T) {
	sender := &stubSender{}
	r := newTestEngine(newMemRepo(), sender)

	w := doJSON(t, r, http.MethodPost, "/send-verification-code", map[string]any{
		"email": "a@x.com", "vcode": "123456",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"message": "Verification code sent successfully"}, decode(t, w))
	assert.Equal(t, 1, sender.calls)
}

func TestSendVerificationCode_DispatchFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("mailgun unavailable")}
	r := newTestEngine(newMemRepo(), sender)

	w := doJSON(t, r, http.MethodPost, "/send-verification-code", map[string]any{
		"email": "a@x.com", "vcode": "123456",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "Failed to send verification code"}, decode(t, w))
}

func TestSendVerificationCode_InvalidPayload(t *testing.T) {
	sender := &stubSender{}
	r := newTestEngine(newMemRepo(), sender)

	w := doJSON(t, r, http.MethodPost, "/send-verification-code", map[string]any{
		"email": "not-an-email", "vcode": "123456",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, sender.calls)
}
