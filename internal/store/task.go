package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/annotune/annotune-api/internal/domain"
)

// TaskFilter narrows and pages a task listing. Zero values mean "no filter"
// for Keyword, Status, TaggerID and ReviewerID.
type TaskFilter struct {
	Page       int
	PageSize   int
	Keyword    string
	Status     domain.TaskStatus
	TaggerID   int64
	ReviewerID int64
}

// Offset returns the row offset implied by the filter's page and page size.
func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Items    []*domain.TaggingTask `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// TaskStore defines the interface for tagging task and record persistence.
type TaskStore interface {
	// Create inserts a pending task and one empty record per question ID,
	// assigning IDs as it goes. Meant to run inside a transaction.
	Create(ctx context.Context, task *domain.TaggingTask, questionIDs []int64) error

	// GetByID retrieves a bare task row (no relationships hydrated).
	// Returns ErrTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.TaggingTask, error)

	// GetRecord retrieves a record with its question hydrated.
	// Returns ErrRecordNotFound if it does not exist.
	GetRecord(ctx context.Context, id int64) (*domain.TaggingRecord, error)

	// UpdateRecordOptions overwrites a record's selected options.
	// Returns ErrRecordNotFound if the record does not exist.
	UpdateRecordOptions(ctx context.Context, id int64, selectedOptions []string) error

	// MarkTagged moves a task to the tagged status, reassigning the tagger
	// and stamping the tagging time. The status precondition (pending or
	// rejected) is enforced inside the UPDATE itself so two concurrent
	// calls cannot both pass the guard.
	// Returns domain.ErrInvalidTransition when the guard rejects the row.
	MarkTagged(ctx context.Context, id, taggerID int64, at time.Time) error

	// MarkReviewed records a review verdict: the new status, the reviewer,
	// an optional comment and the review time. The tagged-status
	// precondition is enforced inside the UPDATE, as with MarkTagged.
	// Returns domain.ErrInvalidTransition when the guard rejects the row.
	MarkReviewed(ctx context.Context, id int64, status domain.TaskStatus, reviewerID int64, comment *string, at time.Time) error

	// Delete removes a task and its records.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// DeleteByMusic removes all tasks referencing the given music, records
	// first. Meant to run inside the music-deletion transaction.
	DeleteByMusic(ctx context.Context, musicID int64) error

	// DeleteRecordsByQuestion removes all records referencing the given
	// question. Meant to run inside the question-deletion transaction.
	DeleteRecordsByQuestion(ctx context.Context, questionID int64) error

	// List returns one page of tasks ordered by creation time descending,
	// with music, tagger, reviewer, creator and records (including their
	// questions) hydrated. Total counts the full filtered set.
	List(ctx context.Context, filter TaskFilter) (*TaskPage, error)

	// ListReviewedByMusic returns the reviewed tasks of the given music
	// rows, with tagger and records (including questions) hydrated.
	ListReviewedByMusic(ctx context.Context, musicIDs []int64) ([]*domain.TaggingTask, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
