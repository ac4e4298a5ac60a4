package store

import (
	"context"
	"database/sql"

	"github.com/annotune/annotune-api/internal/domain"
)

// MusicWithCount is a music row together with its count of reviewed tasks.
type MusicWithCount struct {
	domain.Music
	ValidTaggingCount int `json:"valid_tagging_count"`
}

// MusicStore defines the interface for music persistence.
type MusicStore interface {
	// CreateBatch inserts the given music rows and assigns their IDs.
	// The caller is expected to have filtered out duplicate paths; a
	// lingering conflict surfaces as ErrMusicPathExists.
	CreateBatch(ctx context.Context, music []*domain.Music) error

	// GetByID retrieves a music row by ID.
	// Returns ErrMusicNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Music, error)

	// GetByIDs retrieves the music rows matching the given IDs.
	// Unknown IDs are silently skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Music, error)

	// GetByPath retrieves a music row by its filesystem path.
	// Returns ErrMusicNotFound if it does not exist.
	GetByPath(ctx context.Context, path string) (*domain.Music, error)

	// ExistingPaths reports which of the given paths are already registered.
	ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error)

	// List returns music rows ordered by filename ascending, each with its
	// reviewed-task count. A non-empty filename filter matches as a
	// case-insensitive substring.
	List(ctx context.Context, filename string) ([]*MusicWithCount, error)

	// Delete removes the music row itself. Cascading deletion of dependent
	// tasks and records is the workflow service's responsibility.
	// Returns ErrMusicNotFound if the row does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a MusicStore bound to the provided transaction.
	WithTx(tx *sql.Tx) MusicStore
}
