package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/service/auth"
	"github.com/annotune/annotune-api/internal/store"
)

func newTestUserService(t *testing.T, stores *fakeStores) *UserService {
	t.Helper()
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTestTokenService(
		"test-secret-key-thats-long-enough-for-hs256",
		time.Hour,
		time.Now,
	)
	return NewUserService(stores.users, tokens, hasher, hasher, nil)
}

func TestUserServiceRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a user with a hashed password", func(t *testing.T) {
		t.Parallel()
		stores := newFakeStores()
		svc := newTestUserService(t, stores)

		id, err := svc.Register(ctx, "alice", "s3cret", "tagger")
		require.NoError(t, err)
		require.NotZero(t, id)

		saved := stores.users.rows[id]
		require.NotNil(t, saved)
		assert.Equal(t, domain.RoleTagger, saved.Role)
		assert.NotEqual(t, "s3cret", saved.HashedPassword)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(t, newFakeStores())
		_, err := svc.Register(ctx, "alice", "s3cret", "boss")
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(t, newFakeStores())
		_, err := svc.Register(ctx, "alice", "", "tagger")
		assert.ErrorIs(t, err, domain.ErrEmptyPassword)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		t.Parallel()
		stores := newFakeStores()
		svc := newTestUserService(t, stores)

		_, err := svc.Register(ctx, "alice", "s3cret", "tagger")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "alice", "other", "reviewer")
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})
}

func TestUserServiceLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stores := newFakeStores()
	svc := newTestUserService(t, stores)
	_, err := svc.Register(ctx, "alice", "s3cret", "tagger")
	require.NoError(t, err)

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		token, err := svc.Login(ctx, "alice", "s3cret")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "nope")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects an unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "s3cret")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestUserServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stores := newFakeStores()
	svc := newTestUserService(t, stores)
	alice := stores.mustAddUser("alice", domain.RoleTagger)
	stores.mustAddUser("bob", domain.RoleReviewer)
	stores.mustAddUser("albert", domain.RoleTagger)

	t.Run("keyword matches usernames case-insensitively", func(t *testing.T) {
		users, err := svc.List(ctx, "AL", "")
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "albert", users[0].Username)
		assert.Equal(t, "alice", users[1].Username)
	})

	t.Run("numeric keyword matches the ID", func(t *testing.T) {
		users, err := svc.List(ctx, "1", "")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)
	})

	t.Run("role filter narrows results", func(t *testing.T) {
		users, err := svc.List(ctx, "", "reviewer")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "bob", users[0].Username)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		_, err := svc.List(ctx, "", "boss")
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})
}

func TestIsBusinessError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBusinessError(domain.ErrInvalidRole))
	assert.True(t, IsBusinessError(store.ErrUserNotFound))
	assert.True(t, IsBusinessError(store.ErrMusicPathExists))
	assert.True(t, IsBusinessError(auth.ErrInvalidCredentials))
	assert.True(t, IsBusinessError(ErrForbidden))
	assert.True(t, IsBusinessError(domain.ErrInvalidTransition))

	assert.False(t, IsBusinessError(context.DeadlineExceeded))
	assert.False(t, IsBusinessError(assert.AnError))
}
