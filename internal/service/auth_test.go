package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agendahq/agenda/internal/domain"
)

type fakeUserStore struct {
	nextID int64
	users  map[int64]domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]domain.User{}}
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeUserStore) Create(_ context.Context, user domain.User) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, domain.ErrConflict
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return &user, nil
}

func (s *fakeUserStore) UpsertByEmail(ctx context.Context, user domain.User) (*domain.User, error) {
	for id, u := range s.users {
		if u.Email == user.Email {
			u.Name = user.Name
			s.users[id] = u
			return &u, nil
		}
	}
	return s.Create(ctx, user)
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	return NewAuthService(store, AuthConfig{JWTSecret: "test-secret"}), store
}

func seedUser(t *testing.T, store *fakeUserStore, email, password string, role domain.Role) domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)
	user, err := store.Create(context.Background(), domain.User{
		Email:    email,
		Password: &hash,
		Name:     "Test",
		Role:     role,
	})
	require.NoError(t, err)
	return *user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield a usable access token", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		seeded := seedUser(t, store, "ana@example.com", "secret-pw", domain.RoleAdmin)

		user, tokens, err := svc.Login(ctx, "ana@example.com", "secret-pw")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
		require.NotNil(t, tokens)

		actor, err := svc.ValidateToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, actor.ID)
		assert.Equal(t, domain.RoleAdmin, actor.Role)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		seedUser(t, store, "ana@example.com", "secret-pw", domain.RoleUser)

		_, _, err := svc.Login(ctx, "ana@example.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		svc, _ := newAuthFixture(t)
		_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("oauth account without password cannot password-login", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		_, err := store.Create(ctx, domain.User{Email: "g@example.com", Name: "G", Role: domain.RoleUser})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "g@example.com", "")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_Tokens(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh token is rejected as an access token", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		seedUser(t, store, "ana@example.com", "secret-pw", domain.RoleUser)
		_, tokens, err := svc.Login(ctx, "ana@example.com", "secret-pw")
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokens.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("refresh yields a new pair", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		seeded := seedUser(t, store, "ana@example.com", "secret-pw", domain.RoleUser)
		_, tokens, err := svc.Login(ctx, "ana@example.com", "secret-pw")
		require.NoError(t, err)

		fresh, err := svc.RefreshAccessToken(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		actor, err := svc.ValidateToken(fresh.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, actor.ID)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		seedUser(t, store, "ana@example.com", "secret-pw", domain.RoleUser)
		_, tokens, err := svc.Login(ctx, "ana@example.com", "secret-pw")
		require.NoError(t, err)

		_, err = svc.RefreshAccessToken(ctx, tokens.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		svc, _ := newAuthFixture(t)
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("token signed with another secret is unauthorized", func(t *testing.T) {
		svc, store := newAuthFixture(t)
		seedUser(t, store, "ana@example.com", "secret-pw", domain.RoleUser)
		_, tokens, err := svc.Login(ctx, "ana@example.com", "secret-pw")
		require.NoError(t, err)

		otherSvc := NewAuthService(newFakeUserStore(), AuthConfig{JWTSecret: "different"})
		_, err = otherSvc.ValidateToken(tokens.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthFixture(t)

	created, err := svc.EnsureAdmin(ctx, "admin@agenda.local", "admin-pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)

	again, err := svc.EnsureAdmin(ctx, "admin@agenda.local", "other-pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "second call must not create another admin")
	assert.Len(t, store.users, 1)

	_, _, err = svc.Login(ctx, "admin@agenda.local", "admin-pw")
	assert.NoError(t, err, "original password still valid")
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	user, err := svc.Register(ctx, "new@example.com", "password123", "New User")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)

	_, err = svc.Register(ctx, "new@example.com", "password123", "Dup")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, _, err = svc.Login(ctx, "new@example.com", "password123")
	assert.NoError(t, err)
}
