package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/store"
)

// QuestionService provides CRUD for annotation question templates.
// Mutations require the admin role; listing is open.
type QuestionService struct {
	runTx         TxRunner
	questionStore store.QuestionStore
	taskStore     store.TaskStore
	logger        *slog.Logger
}

// NewQuestionService creates a QuestionService with the given dependencies.
func NewQuestionService(
	runTx TxRunner,
	questionStore store.QuestionStore,
	taskStore store.TaskStore,
	log *slog.Logger,
) *QuestionService {
	if log == nil {
		log = slog.Default()
	}
	return &QuestionService{
		runTx:         runTx,
		questionStore: questionStore,
		taskStore:     taskStore,
		logger:        log.With(slog.String("component", "question_service")),
	}
}

// Create adds a question template and returns its ID.
// Returns domain.ErrEmptyTitle for an empty title and
// store.ErrQuestionTitleExists for a duplicate one.
func (s *QuestionService) Create(
	ctx context.Context,
	caller *domain.User,
	title, description string,
	isMultipleChoice bool,
	options []string,
) (int64, error) {
	if !caller.IsAdmin() {
		return 0, ErrForbidden
	}

	question, err := domain.NewTaggingQuestion(title, description, isMultipleChoice, options)
	if err != nil {
		return 0, err
	}

	if err := s.questionStore.Create(ctx, question); err != nil {
		return 0, err
	}

	return question.ID, nil
}

// Update applies a partial update to a question. Only fields present in the
// patch overwrite existing values; explicit false and empty-list values are
// written, not skipped.
// Returns store.ErrQuestionNotFound for an unknown ID.
func (s *QuestionService) Update(ctx context.Context, caller *domain.User, id int64, patch domain.QuestionPatch) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		questionStore := s.questionStore.WithTx(tx)

		question, err := questionStore.GetByID(ctx, id)
		if err != nil {
			return err
		}
		question.Apply(patch)
		return questionStore.Update(ctx, question)
	})
}

// Delete removes a question and every record referencing it, in one
// transaction. Returns store.ErrQuestionNotFound for an unknown ID.
func (s *QuestionService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		questionStore := s.questionStore.WithTx(tx)

		if _, err := questionStore.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.taskStore.WithTx(tx).DeleteRecordsByQuestion(ctx, id); err != nil {
			return err
		}
		return questionStore.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info("question deleted", slog.Int64("question_id", id))
	return nil
}

// List returns all question templates ordered by title ascending.
func (s *QuestionService) List(ctx context.Context) ([]*domain.TaggingQuestion, error) {
	return s.questionStore.List(ctx)
}
