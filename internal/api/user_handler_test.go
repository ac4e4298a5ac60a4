package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/service"
	"github.com/annotune/annotune-api/internal/service/auth"
	"github.com/annotune/annotune-api/internal/store"
)

// memoryUserStore is a map-backed UserStore for handler tests.
type memoryUserStore struct {
	nextID int64
	rows   map[int64]*domain.User
}

var _ store.UserStore = (*memoryUserStore)(nil)

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{rows: make(map[int64]*domain.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range s.rows {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.rows[user.ID] = user
	return nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.rows[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *memoryUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range s.rows {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memoryUserStore) List(_ context.Context, _ string, _ domain.Role) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(s.rows))
	for _, user := range s.rows {
		users = append(users, user)
	}
	return users, nil
}

func (s *memoryUserStore) WithTx(*sql.Tx) store.UserStore { return s }

func newTestUserHandler(t *testing.T) *UserHandler {
	t.Helper()
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTestTokenService(
		"test-secret-key-thats-long-enough-for-hs256",
		time.Hour,
		time.Now,
	)
	svc := service.NewUserService(newMemoryUserStore(), tokens, hasher, hasher, nil)
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserHandler(svc, validator.New(), discard)
}

// Register and login answer with the bare value in data, the new user's ID
// and the signed token respectively, not an object wrapping it.
func TestUserHandlerEnvelopePayloads(t *testing.T) {
	t.Parallel()
	handler := newTestUserHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(
		`{"username":"alice","password":"s3cret","role":"tagger"}`))
	handler.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var registered shared.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	require.True(t, registered.Success)
	assert.Equal(t, float64(1), registered.Data)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(
		`{"username":"alice","password":"s3cret"}`))
	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var loggedIn shared.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loggedIn))
	require.True(t, loggedIn.Success)
	token, ok := loggedIn.Data.(string)
	require.True(t, ok, "data should be the bare token string")
	assert.NotEmpty(t, token)
}

func TestUserHandlerLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()
	handler := newTestUserHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(
		`{"username":"bob","password":"s3cret","role":"tagger"}`))
	handler.Register(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(
		`{"username":"bob","password":"wrong"}`))
	handler.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp shared.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, auth.ErrInvalidCredentials.Error(), *resp.Error)
}
