package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haoyun/account-service/internal/domain/entity"
	"github.com/haoyun/account-service/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `uuid, username, password, email, phone_number, bio, role`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.UUID, &u.Username, &u.Password, &u.Email,
		&u.PhoneNumber, &u.Bio, &u.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByUsername returns the first matching row in storage order. Username is
// unique at the schema level, so more than one match should not occur.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (r *UserRepository) GetByUUID(ctx context.Context, uuid string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE uuid = $1
	`, uuid)
	return scanUser(row)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (uuid, username, password, email, phone_number, bio, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.UUID, u.Username, u.Password, u.Email, u.PhoneNumber, u.Bio, u.Role)
	return err
}

// UpdateByUUID overwrites all six mutable columns, then re-reads the row so
// the caller sees storage state instead of its own input echoed back.
func (r *UserRepository) UpdateByUUID(ctx context.Context, u *entity.User) (*entity.User, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, password = $2, email = $3, phone_number = $4, bio = $5, role = $6
		WHERE uuid = $7
	`, u.Username, u.Password, u.Email, u.PhoneNumber, u.Bio, u.Role, u.UUID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByUUID(ctx, u.UUID)
}

var _ repository.UserRepository = (*UserRepository)(nil)
