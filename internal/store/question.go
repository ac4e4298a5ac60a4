package store

import (
	"context"
	"database/sql"

	"github.com/annotune/annotune-api/internal/domain"
)

// QuestionStore defines the interface for tagging question persistence.
type QuestionStore interface {
	// Create saves a new question and assigns its ID.
	// Returns ErrQuestionTitleExists if the title is already taken.
	Create(ctx context.Context, question *domain.TaggingQuestion) error

	// GetByID retrieves a question by ID.
	// Returns ErrQuestionNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.TaggingQuestion, error)

	// GetByIDs retrieves the questions matching the given IDs.
	// Unknown IDs are silently skipped; callers compare lengths to detect
	// unresolvable references.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.TaggingQuestion, error)

	// Update overwrites an existing question's mutable fields.
	// Returns ErrQuestionNotFound if it does not exist.
	Update(ctx context.Context, question *domain.TaggingQuestion) error

	// Delete removes the question row itself. Cascading deletion of
	// referencing records is the workflow service's responsibility.
	// Returns ErrQuestionNotFound if the row does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns all questions ordered by title ascending.
	List(ctx context.Context) ([]*domain.TaggingQuestion, error)

	// WithTx returns a QuestionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
