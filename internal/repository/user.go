package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// создаем пользователя, уникальность username гарантирует БД
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*entity.User, error) {
	query := `
	INSERT INTO users (username, password_hash)
	VALUES ($1, $2)
	RETURNING id, username, password_hash, created_at
	`

	var u entity.User
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, entity.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
	SELECT id, username, password_hash, created_at
	FROM users
	WHERE username = $1
	`

	var u entity.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
