package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	appErrors "github.com/coffeehaus/storefront/internal/errors"
	"github.com/coffeehaus/storefront/internal/models"
	repository "github.com/coffeehaus/storefront/internal/repositories"
	service "github.com/coffeehaus/storefront/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byEmail[user.Email] = user
	r.byID[user.ID] = user

	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

const testJWTKey = "test-signing-key"

func newUserServiceTest() (*service.UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return service.NewUserService(repo, []byte(testJWTKey), time.Hour), repo
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo := newUserServiceTest()

		user, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "secret123",
			Name:     "Alice",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		// Stored password is a bcrypt hash, never the plaintext.
		assert.NotEqual(t, "secret123", repo.byEmail["alice@example.com"].Password)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		svc, _ := newUserServiceTest()

		_, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "secret123",
			Name:     "Alice",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "other456",
			Name:     "Alice Again",
		})

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDuplicateEntry))
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, svc *service.UserService) *models.User {
		t.Helper()

		user, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Password: "secret123",
			Name:     "Alice",
		})
		require.NoError(t, err)

		return user
	}

	t.Run("Success", func(t *testing.T) {
		svc, _ := newUserServiceTest()
		user := register(t, svc)

		resp, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "alice@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		require.NotEmpty(t, resp.Token)
		assert.Equal(t, int(time.Hour.Seconds()), resp.ExpiresIn)

		// The token carries the user's identity and is verifiable with the
		// signing key.
		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) {
			return []byte(testJWTKey), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		svc, _ := newUserServiceTest()
		register(t, svc)

		resp, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		})

		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Empty(t, resp.Token)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		svc, _ := newUserServiceTest()

		resp, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "nobody@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.False(t, resp.Success)
	})
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := newUserServiceTest()

	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	require.NoError(t, repo.CreateUser(ctx, user))

	t.Run("Success", func(t *testing.T) {
		got, err := svc.GetProfile(ctx, user.ID)

		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, uuid.New())

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}
