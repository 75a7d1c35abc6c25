package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/infrastructure/auth"
	"github.com/St1cky1/task-manager/internal/repository"
)

type AuthService struct {
	log             *slog.Logger
	userRepo        repository.IUserRepository
	passwordManager *auth.PasswordManager
}

func NewAuthService(
	log *slog.Logger,
	userRepo repository.IUserRepository,
	passwordManager *auth.PasswordManager,
) *AuthService {
	return &AuthService{
		log:             log,
		userRepo:        userRepo,
		passwordManager: passwordManager,
	}
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	// Проверяем, что username свободен
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, entity.ErrUserAlreadyExists
	}

	// Хешируем пароль
	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Гонку двух регистраций ловит UNIQUE в БД
	user, err := s.userRepo.Create(ctx, req.Username, hash)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return &entity.RegisterResponse{ID: user.ID, Username: user.Username}, nil
}

// Login проверяет учётные данные, сессия не создаётся
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !s.passwordManager.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, entity.ErrInvalidCredentials
	}

	return &entity.LoginResponse{
		Success: true,
		User:    entity.LoginUserDTO{Username: user.Username},
	}, nil
}
