package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/St1cky1/task-manager/internal/infrastructure/auth"
	"github.com/St1cky1/task-manager/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepository хранит пользователей в памяти
type fakeUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*entity.User
}

var _ repository.IUserRepository = (*fakeUserRepository)(nil)

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepository) Create(_ context.Context, username, passwordHash string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return nil, entity.ErrUserAlreadyExists
	}
	f.nextID++
	u := &entity.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[username], nil
}

func newAuthService(repo repository.IUserRepository) *AuthService {
	return NewAuthService(discardLogger(), repo, auth.NewPasswordManagerWithCost(bcrypt.MinCost))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepository()
	service := newAuthService(repo)

	reg, err := service.Register(ctx, &entity.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), reg.ID)
	assert.Equal(t, "alice", reg.Username)

	// пароль не хранится в открытом виде
	assert.NotEqual(t, "pw", repo.users["alice"].PasswordHash)

	login, err := service.Login(ctx, &entity.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, login.Success)
	assert.Equal(t, "alice", login.User.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	service := newAuthService(newFakeUserRepository())

	_, err := service.Register(ctx, &entity.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	_, err = service.Register(ctx, &entity.RegisterRequest{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, entity.ErrUserAlreadyExists)
}

func TestRegisterEmptyFields(t *testing.T) {
	service := newAuthService(newFakeUserRepository())

	_, err := service.Register(context.Background(), &entity.RegisterRequest{Username: "", Password: "pw"})
	assert.ErrorIs(t, err, entity.ErrInvalidUserData)

	_, err = service.Register(context.Background(), &entity.RegisterRequest{Username: "bob", Password: ""})
	assert.ErrorIs(t, err, entity.ErrInvalidUserData)

	// bcrypt не принимает больше 72 байт
	_, err = service.Register(context.Background(), &entity.RegisterRequest{Username: "bob", Password: strings.Repeat("x", 80)})
	assert.ErrorIs(t, err, entity.ErrInvalidUserData)

	_, err = service.Login(context.Background(), &entity.LoginRequest{Username: "bob", Password: strings.Repeat("x", 80)})
	assert.ErrorIs(t, err, entity.ErrInvalidUserData)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	service := newAuthService(newFakeUserRepository())

	_, err := service.Register(ctx, &entity.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	_, err = service.Login(ctx, &entity.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = service.Login(ctx, &entity.LoginRequest{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = service.Login(ctx, &entity.LoginRequest{Username: "alice"})
	assert.ErrorIs(t, err, entity.ErrInvalidUserData)
}
