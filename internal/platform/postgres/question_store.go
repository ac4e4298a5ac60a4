package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/store"
)

// QuestionStore implements the store.QuestionStore interface using a
// PostgreSQL database as the storage backend. Option lists are stored as
// JSONB.
type QuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewQuestionStore creates a new PostgreSQL implementation of the
// QuestionStore interface.
func NewQuestionStore(db store.DBTX, logger *slog.Logger) *QuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

// Ensure QuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*QuestionStore)(nil)

// WithTx implements store.QuestionStore.WithTx
func (s *QuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &QuestionStore{db: tx, logger: s.logger}
}

// Create implements store.QuestionStore.Create
func (s *QuestionStore) Create(ctx context.Context, question *domain.TaggingQuestion) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := question.Validate(); err != nil {
		log.Warn("question validation failed during create",
			slog.String("error", err.Error()),
			slog.String("title", question.Title))
		return err
	}

	options, err := marshalOptions(question.Options)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tagging_questions (title, description, is_multiple_choice, options, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = s.db.QueryRowContext(
		ctx,
		query,
		question.Title,
		question.Description,
		question.IsMultipleChoice,
		options,
		question.CreatedAt,
	).Scan(&question.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", store.ErrQuestionTitleExists, question.Title)
		}
		log.Error("failed to create question",
			slog.String("error", err.Error()),
			slog.String("title", question.Title))
		return mapError(err)
	}

	log.Info("question created",
		slog.Int64("question_id", question.ID),
		slog.String("title", question.Title))
	return nil
}

// GetByID implements store.QuestionStore.GetByID
func (s *QuestionStore) GetByID(ctx context.Context, id int64) (*domain.TaggingQuestion, error) {
	query := `
		SELECT id, title, description, is_multiple_choice, options, created_at
		FROM tagging_questions
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)

	q, err := scanQuestion(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrQuestionNotFound
		}
		return nil, mapError(err)
	}
	return q, nil
}

// GetByIDs implements store.QuestionStore.GetByIDs
func (s *QuestionStore) GetByIDs(ctx context.Context, ids []int64) ([]*domain.TaggingQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, title, description, is_multiple_choice, options, created_at
		FROM tagging_questions
		WHERE id = ANY($1)
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.TaggingQuestion
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return result, nil
}

// Update implements store.QuestionStore.Update
func (s *QuestionStore) Update(ctx context.Context, question *domain.TaggingQuestion) error {
	options, err := marshalOptions(question.Options)
	if err != nil {
		return err
	}

	query := `
		UPDATE tagging_questions
		SET description = $1, is_multiple_choice = $2, options = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		question.Description,
		question.IsMultipleChoice,
		options,
		question.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, store.ErrQuestionNotFound)
}

// Delete implements store.QuestionStore.Delete
func (s *QuestionStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tagging_questions WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, store.ErrQuestionNotFound)
}

// List implements store.QuestionStore.List
func (s *QuestionStore) List(ctx context.Context) ([]*domain.TaggingQuestion, error) {
	query := `
		SELECT id, title, description, is_multiple_choice, options, created_at
		FROM tagging_questions
		ORDER BY title ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.TaggingQuestion
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return result, nil
}

// scanQuestion scans one question row, decoding the JSONB option list.
func scanQuestion(scan func(dest ...any) error) (*domain.TaggingQuestion, error) {
	var (
		q       domain.TaggingQuestion
		options []byte
	)
	if err := scan(&q.ID, &q.Title, &q.Description, &q.IsMultipleChoice, &options, &q.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, fmt.Errorf("failed to decode question options: %w", err)
	}
	return &q, nil
}

// marshalOptions encodes an option list for JSONB storage, normalizing nil
// to an empty array.
func marshalOptions(options []string) ([]byte, error) {
	if options == nil {
		options = []string{}
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return encoded, nil
}
