package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/platform/timeutil"
	"github.com/annotune/annotune-api/internal/store"
)

// Pagination bounds for task listing.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ExportDocument is a rendered export of accepted annotations, ready to be
// served as a download.
type ExportDocument struct {
	Content  []byte
	Filename string
}

// TaskService drives the task workflow state machine:
// pending → tagged → reviewed|rejected, with rejected tasks re-enterable.
type TaskService struct {
	runTx      TxRunner
	taskStore  store.TaskStore
	musicStore store.MusicStore
	userStore  store.UserStore
	questions  store.QuestionStore
	timeFunc   func() time.Time // Injectable for testing
	logger     *slog.Logger
}

// NewTaskService creates a TaskService with the given dependencies.
func NewTaskService(
	runTx TxRunner,
	taskStore store.TaskStore,
	musicStore store.MusicStore,
	userStore store.UserStore,
	questions store.QuestionStore,
	log *slog.Logger,
) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		runTx:      runTx,
		taskStore:  taskStore,
		musicStore: musicStore,
		userStore:  userStore,
		questions:  questions,
		timeFunc:   time.Now,
		logger:     log.With(slog.String("component", "task_service")),
	}
}

// Create builds a pending task for the given music, tagger, reviewer and
// question set, inserting the task and one empty record per question
// atomically. Requires the admin role. Fails when any referenced row is
// unresolvable; the tagger must hold the tagger role and the reviewer the
// reviewer role (admin satisfies both).
func (s *TaskService) Create(
	ctx context.Context,
	caller *domain.User,
	musicID, taggerID, reviewerID int64,
	questionIDs []int64,
) (int64, error) {
	if !caller.IsAdmin() {
		return 0, ErrForbidden
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.musicStore.GetByID(ctx, musicID); err != nil {
		return 0, err
	}

	tagger, err := s.userStore.GetByID(ctx, taggerID)
	if err != nil || !tagger.Can(domain.RoleTagger) {
		return 0, ErrTaggerNotFound
	}
	reviewer, err := s.userStore.GetByID(ctx, reviewerID)
	if err != nil || !reviewer.Can(domain.RoleReviewer) {
		return 0, ErrReviewerNotFound
	}

	if len(questionIDs) == 0 {
		return 0, fmt.Errorf("%w: a task needs at least one question", domain.ErrValidation)
	}
	questions, err := s.questions.GetByIDs(ctx, questionIDs)
	if err != nil {
		return 0, err
	}
	if len(questions) != len(questionIDs) {
		return 0, store.ErrQuestionNotFound
	}

	task := domain.NewTaggingTask(musicID, taggerID, reviewerID, caller.ID)
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task, questionIDs)
	})
	if err != nil {
		return 0, err
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("music_id", musicID),
		slog.Int64("tagger_id", taggerID),
		slog.Int64("reviewer_id", reviewerID))
	return task.ID, nil
}

// SubmitAnswer overwrites one record's selected options. Allowed for
// taggers (and admin) while the owning task is pending or rejected.
// Enforces the question's cardinality rule.
func (s *TaskService) SubmitAnswer(ctx context.Context, caller *domain.User, recordID int64, selectedOptions []string) error {
	if !caller.Can(domain.RoleTagger) {
		return ErrForbidden
	}

	record, err := s.taskStore.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}

	task, err := s.taskStore.GetByID(ctx, record.TaskID)
	if err != nil {
		return err
	}
	if !task.Status.Taggable() {
		return domain.ErrInvalidTransition
	}

	if err := domain.ValidateAnswer(record.Question, selectedOptions); err != nil {
		return err
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).UpdateRecordOptions(ctx, recordID, selectedOptions)
	})
}

// Finish marks a pending or rejected task as tagged, reassigning the
// tagger to the caller and stamping the tagging time. Allowed for taggers
// and admin. The store enforces the status precondition atomically.
func (s *TaskService) Finish(ctx context.Context, caller *domain.User, taskID int64) error {
	if !caller.Can(domain.RoleTagger) {
		return ErrForbidden
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.Status.Taggable() {
		return domain.ErrInvalidTransition
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).MarkTagged(ctx, taskID, caller.ID, s.timeFunc().UTC())
	})
}

// Review records a verdict on a tagged task: agreed moves it to reviewed,
// disagreed to rejected. Allowed for reviewers and admin. The reviewer,
// comment and review time are recorded; the store enforces the
// tagged-status precondition atomically.
func (s *TaskService) Review(ctx context.Context, caller *domain.User, taskID int64, result string, comment *string) error {
	if !caller.Can(domain.RoleReviewer) {
		return ErrForbidden
	}

	verdict, err := domain.ParseReviewResult(result)
	if err != nil {
		return err
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.Status.Reviewable() {
		return domain.ErrInvalidTransition
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).MarkReviewed(
			ctx, taskID, verdict.NextStatus(), caller.ID, comment, s.timeFunc().UTC(),
		)
	})
}

// Delete removes a task and its records in one transaction; an admin
// override valid from any state.
func (s *TaskService) Delete(ctx context.Context, caller *domain.User, taskID int64) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Delete(ctx, taskID)
	})
}

// List returns one page of tasks with relationships hydrated, newest
// first. Page defaults to 1 and page size to 20, capped at 100.
func (s *TaskService) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, filter.Status)
	}

	return s.taskStore.List(ctx, filter)
}

// Export renders the accepted annotations of the requested music rows as a
// pretty-printed JSON document: one single-key object per music, mapping
// filepath → question title → tagger username → selected options. Only
// reviewed tasks contribute. Requires the admin role.
func (s *TaskService) Export(ctx context.Context, caller *domain.User, musicIDs []int64) (*ExportDocument, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	musicRows, err := s.musicStore.GetByIDs(ctx, musicIDs)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskStore.ListReviewedByMusic(ctx, musicIDs)
	if err != nil {
		return nil, err
	}

	tasksByMusic := make(map[int64][]*domain.TaggingTask)
	for _, t := range tasks {
		tasksByMusic[t.MusicID] = append(tasksByMusic[t.MusicID], t)
	}

	document := make([]map[string]map[string]map[string][]string, 0, len(musicRows))
	for _, m := range musicRows {
		annotations := make(map[string]map[string][]string)
		for _, task := range tasksByMusic[m.ID] {
			for _, record := range task.Records {
				byTagger, ok := annotations[record.Question.Title]
				if !ok {
					byTagger = make(map[string][]string)
					annotations[record.Question.Title] = byTagger
				}
				byTagger[task.Tagger.Username] = record.SelectedOptions
			}
		}
		document = append(document, map[string]map[string]map[string][]string{
			m.Filepath: annotations,
		})
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false) // Preserve non-ASCII and symbols verbatim
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(document); err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}

	return &ExportDocument{
		Content:  buf.Bytes(),
		Filename: fmt.Sprintf("tagging_records_%s.json", timeutil.Stamp(s.timeFunc())),
	}, nil
}
