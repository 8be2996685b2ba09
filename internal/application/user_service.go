package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/haoyun/account-service/internal/domain/entity"
	repo "github.com/haoyun/account-service/internal/domain/repository"
	"github.com/haoyun/account-service/pkg/helpers"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service owns the user-record workflow: registration, lookup, update, and
// credential checks. Redis and Elasticsearch are optional; a nil client
// disables caching or indexing without changing the documented behavior.
type Service struct {
	Repo         repo.UserRepository
	Redis        *redis.Client
	CacheTTL     time.Duration
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewService(repo repo.UserRepository, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *Service {
	return &Service{
		Repo:         repo,
		Redis:        rdb,
		CacheTTL:     cacheTTL,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

func profileKey(username string) string {
	return "user:profile:" + username
}

// RegisterInput carries the seven columns of a new row. UUID is
// caller-supplied and opaque; Password is plaintext here and hashed before
// it reaches the store.
type RegisterInput struct {
	UUID        string
	Username    string
	Password    string
	Email       string
	PhoneNumber string
	Bio         string
	Role        string
}

// UpdateInput carries the six mutable columns for a full-row overwrite.
type UpdateInput struct {
	Username    string
	Password    string
	Email       string
	PhoneNumber string
	Bio         string
	Role        string
}

// GetByUsername returns the stored row, reading through the Redis cache
// when one is configured.
func (s *Service) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if s.Redis != nil {
		var cached entity.User
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(username), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(username), u, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("username", username).Warn("profile cache set failed")
		}
	}
	return u, nil
}

// Register hashes the password and inserts one row. Uniqueness of uuid and
// username is enforced by the schema; a constraint violation surfaces as a
// store error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		UUID:        in.UUID,
		Username:    in.Username,
		Password:    hash,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Bio:         in.Bio,
		Role:        in.Role,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// UpdateByUUID overwrites all six mutable fields of the row keyed by uuid
// and returns the freshly re-read row. Cache entries for both the previous
// and the new username are dropped so a follow-up read reflects storage
// state.
func (s *Service) UpdateByUUID(ctx context.Context, uuid string, in UpdateInput) (*entity.User, error) {
	if s.Redis != nil {
		if old, err := s.Repo.GetByUUID(ctx, uuid); err == nil {
			_ = helpers.RedisDel(ctx, s.Redis, profileKey(old.Username))
		}
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	updated, err := s.Repo.UpdateByUUID(ctx, &entity.User{
		UUID:        uuid,
		Username:    in.Username,
		Password:    hash,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Bio:         in.Bio,
		Role:        in.Role,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, profileKey(updated.Username))
	}
	_ = s.indexUser(ctx, updated)
	return updated, nil
}

// Authenticate validates username/password against the stored hash. Unknown
// username and wrong password both yield ErrInvalidCredentials; a caller
// cannot tell the two apart. The store is always read directly so the check
// never runs against a cached row.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	// Password hash stays out of the index.
	doc := map[string]any{
		"uuid":         u.UUID,
		"username":     u.Username,
		"email":        u.Email,
		"phone_number": u.PhoneNumber,
		"bio":          u.Bio,
		"role":         u.Role,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.UUID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("uuid", u.UUID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("uuid", u.UUID).Warn("es index response error")
	}
	return nil
}

// SearchUsers performs a simple multi_match search on username, email, and bio.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email", "bio"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
