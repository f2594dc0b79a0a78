package user

import (
	"context"
	"testing"
	"time"

	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"

	jwtlib "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	users map[string]*entities.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*entities.User)}
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *entities.User) error {
	f.users[user.ID.String()] = user
	return nil
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) UpdateUser(_ context.Context, user *entities.User) error {
	f.users[user.ID.String()] = user
	return nil
}

// fakeJWT issues tokens that embed the user ID directly.
type fakeJWT struct {
	verifyErr error
}

func (f *fakeJWT) GenerateTokenUser(userID string, role string) string {
	return "user-token:" + userID + ":" + role
}

func (f *fakeJWT) ValidateTokenUser(_ string) (*jwtlib.Token, error) {
	return nil, domain.ErrTokenInvalid
}

func (f *fakeJWT) GetUserIDByToken(_ string) (string, string, error) {
	return "", "", domain.ErrTokenInvalid
}

func (f *fakeJWT) GenerateTokenVerification(data map[string]any, _ time.Duration) (string, error) {
	id, _ := data["user_id"].(string)
	return "verify-token:" + id, nil
}

func (f *fakeJWT) ValidateTokenVerification(token string) (jwtlib.MapClaims, error) {
	if f.verifyErr != nil {
		return jwtlib.MapClaims{}, f.verifyErr
	}
	const prefix = "verify-token:"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return jwtlib.MapClaims{}, domain.ErrTokenInvalid
	}
	return jwtlib.MapClaims{"user_id": token[len(prefix):]}, nil
}

func registerRequest() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "correct horse battery",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	service := NewUserService(repo, &fakeJWT{})

	registered, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", registered.Email)
	require.NotEmpty(t, registered.ID)

	// Stored password is hashed, never the plaintext.
	stored := repo.users[registered.ID]
	require.NotEqual(t, "correct horse battery", stored.Password)

	login, err := service.Login(context.Background(), domain.LoginRequest{
		Email:    "dana@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, "user-token:"+registered.ID+":"+domain.RoleUser, login.Token)

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "dana@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	service := NewUserService(repo, &fakeJWT{})

	_, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = service.Register(context.Background(), registerRequest())
	require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	service := NewUserService(newFakeUserRepository(), &fakeJWT{})

	_, err := service.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	service := NewUserService(repo, &fakeJWT{})

	registered, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	require.False(t, repo.users[registered.ID].IsVerified)

	require.NoError(t, service.VerifyEmail(context.Background(), "verify-token:"+registered.ID))
	require.True(t, repo.users[registered.ID].IsVerified)

	err = service.VerifyEmail(context.Background(), "verify-token:"+uuid.New().String())
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMe(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepository()
	service := NewUserService(repo, &fakeJWT{})

	registered, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	me, err := service.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	require.Equal(t, "Dana", me.Name)

	_, err = service.Me(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
