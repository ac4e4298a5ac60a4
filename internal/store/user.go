package store

import (
	"context"
	"database/sql"

	"github.com/annotune/annotune-api/internal/domain"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user and assigns its ID.
	// Returns ErrUsernameExists if the username is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns users ordered by username ascending. A non-empty keyword
	// matches the username as a case-insensitive substring, or the ID
	// exactly when the keyword is all digits. A non-empty role restricts
	// results to that role.
	List(ctx context.Context, keyword string, role domain.Role) ([]*domain.User, error)

	// WithTx returns a UserStore bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
