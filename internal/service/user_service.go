package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/service/auth"
	"github.com/annotune/annotune-api/internal/store"
)

// UserService provides registration, login and user lookup.
type UserService struct {
	userStore    store.UserStore
	tokenService auth.TokenService
	hasher       auth.PasswordHasher
	verifier     auth.PasswordVerifier
	logger       *slog.Logger
}

// NewUserService creates a UserService with the given dependencies.
func NewUserService(
	userStore store.UserStore,
	tokenService auth.TokenService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		userStore:    userStore,
		tokenService: tokenService,
		hasher:       hasher,
		verifier:     verifier,
		logger:       log.With(slog.String("component", "user_service")),
	}
}

// Register creates a new user with a bcrypt-hashed password and returns its
// ID. Returns store.ErrUsernameExists when the username is taken.
func (s *UserService) Register(ctx context.Context, username, password, role string) (int64, error) {
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return 0, err
	}
	if password == "" {
		return 0, domain.ErrEmptyPassword
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	user, err := domain.NewUser(username, hashed, parsedRole)
	if err != nil {
		return 0, err
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login verifies the credentials and issues a bearer token.
// Returns store.ErrUserNotFound for an unknown username and
// auth.ErrInvalidCredentials for a password mismatch.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Warn("login failed: password mismatch",
			slog.String("username", username))
		return "", auth.ErrInvalidCredentials
	}

	token, err := s.tokenService.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", err
	}

	log.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", username))
	return token, nil
}

// Resolve maps a verified token claim back to its user.
// Returns store.ErrUserNotFound when the user row is gone.
func (s *UserService) Resolve(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// List returns users matching the optional keyword and role filters,
// ordered by username ascending. An invalid non-empty role is rejected
// with domain.ErrInvalidRole.
func (s *UserService) List(ctx context.Context, keyword, role string) ([]*domain.User, error) {
	var parsedRole domain.Role
	if role != "" {
		var err error
		parsedRole, err = domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
	}
	return s.userStore.List(ctx, keyword, parsedRole)
}

// IsBusinessError reports whether an error belongs to the expected,
// user-facing tier of the taxonomy (validation, auth, not-found, duplicate,
// state-machine violations) as opposed to an unexpected system failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidRole) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidReviewResult) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrEmptyUsername) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrEmptyAnswer) ||
		errors.Is(err, domain.ErrSingleChoice) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrInvalidCredentials) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrTaggerNotFound) ||
		errors.Is(err, ErrReviewerNotFound) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrNotAFile) ||
		errors.Is(err, ErrUnregisteredMusic)
}
