package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend. It owns both the tagging_tasks and
// tagging_records tables since the two always change together.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.TaggingTask, questionIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskQuery := `
		INSERT INTO tagging_tasks (music_id, status, tagger_id, reviewer_id, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		taskQuery,
		task.MusicID,
		task.Status,
		task.TaggerID,
		task.ReviewerID,
		task.CreatorID,
		task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to create tagging task",
			slog.String("error", err.Error()),
			slog.Int64("music_id", task.MusicID))
		return mapError(err)
	}

	recordQuery := `
		INSERT INTO tagging_records (task_id, question_id, selected_options)
		VALUES ($1, $2, '[]'::jsonb)
		RETURNING id
	`
	for _, questionID := range questionIDs {
		record := &domain.TaggingRecord{
			TaskID:          task.ID,
			QuestionID:      questionID,
			SelectedOptions: []string{},
		}
		if err := s.db.QueryRowContext(ctx, recordQuery, task.ID, questionID).Scan(&record.ID); err != nil {
			log.Error("failed to create tagging record",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID),
				slog.Int64("question_id", questionID))
			return mapError(err)
		}
		task.Records = append(task.Records, record)
	}

	log.Info("tagging task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("music_id", task.MusicID),
		slog.Int("record_count", len(questionIDs)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.TaggingTask, error) {
	query := `
		SELECT id, music_id, status, tagger_id, tagging_time,
		       reviewer_id, reviewer_comment, review_time, creator_id, created_at
		FROM tagging_tasks
		WHERE id = $1
	`
	var t domain.TaggingTask
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.MusicID, &t.Status, &t.TaggerID, &t.TaggingTime,
		&t.ReviewerID, &t.ReviewerComment, &t.ReviewTime, &t.CreatorID, &t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTaskNotFound
		}
		return nil, mapError(err)
	}
	return &t, nil
}

// GetRecord implements store.TaskStore.GetRecord
func (s *TaskStore) GetRecord(ctx context.Context, id int64) (*domain.TaggingRecord, error) {
	query := `
		SELECT r.id, r.task_id, r.question_id, r.selected_options,
		       q.id, q.title, q.description, q.is_multiple_choice, q.options, q.created_at
		FROM tagging_records r
		JOIN tagging_questions q ON q.id = r.question_id
		WHERE r.id = $1
	`
	var (
		r               domain.TaggingRecord
		q               domain.TaggingQuestion
		selectedOptions []byte
		questionOptions []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.TaskID, &r.QuestionID, &selectedOptions,
		&q.ID, &q.Title, &q.Description, &q.IsMultipleChoice, &questionOptions, &q.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrRecordNotFound
		}
		return nil, mapError(err)
	}

	if err := json.Unmarshal(selectedOptions, &r.SelectedOptions); err != nil {
		return nil, fmt.Errorf("failed to decode selected options: %w", err)
	}
	if err := json.Unmarshal(questionOptions, &q.Options); err != nil {
		return nil, fmt.Errorf("failed to decode question options: %w", err)
	}
	r.Question = &q
	return &r, nil
}

// UpdateRecordOptions implements store.TaskStore.UpdateRecordOptions
func (s *TaskStore) UpdateRecordOptions(ctx context.Context, id int64, selectedOptions []string) error {
	encoded, err := marshalOptions(selectedOptions)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE tagging_records SET selected_options = $1 WHERE id = $2`,
		encoded,
		id,
	)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, store.ErrRecordNotFound)
}

// MarkTagged implements store.TaskStore.MarkTagged
// The status precondition lives inside the UPDATE so the transition acts as
// a compare-and-swap; a concurrent call that loses the race sees zero
// affected rows instead of overwriting the winner.
func (s *TaskStore) MarkTagged(ctx context.Context, id, taggerID int64, at time.Time) error {
	query := `
		UPDATE tagging_tasks
		SET status = $1, tagger_id = $2, tagging_time = $3
		WHERE id = $4 AND status IN ($5, $6)
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.TaskTagged,
		taggerID,
		at,
		id,
		domain.TaskPending,
		domain.TaskRejected,
	)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, domain.ErrInvalidTransition)
}

// MarkReviewed implements store.TaskStore.MarkReviewed
func (s *TaskStore) MarkReviewed(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
	reviewerID int64,
	comment *string,
	at time.Time,
) error {
	query := `
		UPDATE tagging_tasks
		SET status = $1, reviewer_id = $2, reviewer_comment = $3, review_time = $4
		WHERE id = $5 AND status = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		status,
		reviewerID,
		comment,
		at,
		id,
		domain.TaskTagged,
	)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, domain.ErrInvalidTransition)
}

// Delete implements store.TaskStore.Delete
// Records go first, then the task row; callers wrap this in a transaction.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tagging_records WHERE task_id = $1`, id); err != nil {
		return mapError(err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tagging_tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// DeleteByMusic implements store.TaskStore.DeleteByMusic
func (s *TaskStore) DeleteByMusic(ctx context.Context, musicID int64) error {
	recordsQuery := `
		DELETE FROM tagging_records
		WHERE task_id IN (SELECT id FROM tagging_tasks WHERE music_id = $1)
	`
	if _, err := s.db.ExecContext(ctx, recordsQuery, musicID); err != nil {
		return mapError(err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tagging_tasks WHERE music_id = $1`, musicID); err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteRecordsByQuestion implements store.TaskStore.DeleteRecordsByQuestion
func (s *TaskStore) DeleteRecordsByQuestion(ctx context.Context, questionID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tagging_records WHERE question_id = $1`, questionID); err != nil {
		return mapError(err)
	}
	return nil
}

// taskListFrom is the join shared by the count and page queries of List.
// Reviewer is joined LEFT because historic rows may outlive a deleted user.
const taskListFrom = `
	FROM tagging_tasks t
	JOIN music m ON m.id = t.music_id
	JOIN users tagger ON tagger.id = t.tagger_id
	LEFT JOIN users reviewer ON reviewer.id = t.reviewer_id
	JOIN users creator ON creator.id = t.creator_id
`

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		n := len(args)
		where += fmt.Sprintf(
			" AND (m.filename ILIKE $%d OR tagger.username ILIKE $%d OR reviewer.username ILIKE $%d OR creator.username ILIKE $%d)",
			n, n, n, n,
		)
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if filter.TaggerID != 0 {
		args = append(args, filter.TaggerID)
		where += fmt.Sprintf(" AND t.tagger_id = $%d", len(args))
	}
	if filter.ReviewerID != 0 {
		args = append(args, filter.ReviewerID)
		where += fmt.Sprintf(" AND t.reviewer_id = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*)` + taskListFrom + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	pageQuery := `
		SELECT t.id, t.music_id, t.status, t.tagger_id, t.tagging_time,
		       t.reviewer_id, t.reviewer_comment, t.review_time, t.creator_id, t.created_at,
		       m.id, m.filepath, m.filename, m.duration_seconds, m.created_at,
		       tagger.id, tagger.username, tagger.role, tagger.created_at,
		       reviewer.id, reviewer.username, reviewer.role, reviewer.created_at,
		       creator.id, creator.username, creator.role, creator.created_at
	` + taskListFrom + where + fmt.Sprintf(
		" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2,
	)
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.TaggingTask
	for rows.Next() {
		var (
			t        domain.TaggingTask
			music    domain.Music
			tagger   domain.User
			creator  domain.User
			revID    sql.NullInt64
			revName  sql.NullString
			revRole  sql.NullString
			revSince sql.NullTime
		)
		err := rows.Scan(
			&t.ID, &t.MusicID, &t.Status, &t.TaggerID, &t.TaggingTime,
			&t.ReviewerID, &t.ReviewerComment, &t.ReviewTime, &t.CreatorID, &t.CreatedAt,
			&music.ID, &music.Filepath, &music.Filename, &music.DurationSeconds, &music.CreatedAt,
			&tagger.ID, &tagger.Username, &tagger.Role, &tagger.CreatedAt,
			&revID, &revName, &revRole, &revSince,
			&creator.ID, &creator.Username, &creator.Role, &creator.CreatedAt,
		)
		if err != nil {
			return nil, mapError(err)
		}

		t.Music = &music
		t.Tagger = &tagger
		t.Creator = &creator
		if revID.Valid {
			t.Reviewer = &domain.User{
				ID:        revID.Int64,
				Username:  revName.String,
				Role:      domain.Role(revRole.String),
				CreatedAt: revSince.Time,
			}
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	if err := s.attachRecords(ctx, tasks); err != nil {
		return nil, err
	}

	return &store.TaskPage{
		Items:    tasks,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ListReviewedByMusic implements store.TaskStore.ListReviewedByMusic
func (s *TaskStore) ListReviewedByMusic(ctx context.Context, musicIDs []int64) ([]*domain.TaggingTask, error) {
	if len(musicIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT t.id, t.music_id, t.status, t.tagger_id, t.tagging_time,
		       t.reviewer_id, t.reviewer_comment, t.review_time, t.creator_id, t.created_at,
		       tagger.id, tagger.username, tagger.role, tagger.created_at
		FROM tagging_tasks t
		JOIN users tagger ON tagger.id = t.tagger_id
		WHERE t.music_id = ANY($1) AND t.status = $2
		ORDER BY t.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, musicIDs, domain.TaskReviewed)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.TaggingTask
	for rows.Next() {
		var (
			t      domain.TaggingTask
			tagger domain.User
		)
		err := rows.Scan(
			&t.ID, &t.MusicID, &t.Status, &t.TaggerID, &t.TaggingTime,
			&t.ReviewerID, &t.ReviewerComment, &t.ReviewTime, &t.CreatorID, &t.CreatedAt,
			&tagger.ID, &tagger.Username, &tagger.Role, &tagger.CreatedAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		t.Tagger = &tagger
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	if err := s.attachRecords(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// attachRecords hydrates the records (with their questions) of the given
// tasks in a single query.
func (s *TaskStore) attachRecords(ctx context.Context, tasks []*domain.TaggingTask) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.TaggingTask, len(tasks))
	taskIDs := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		taskIDs = append(taskIDs, t.ID)
	}

	query := `
		SELECT r.id, r.task_id, r.question_id, r.selected_options,
		       q.id, q.title, q.description, q.is_multiple_choice, q.options, q.created_at
		FROM tagging_records r
		JOIN tagging_questions q ON q.id = r.question_id
		WHERE r.task_id = ANY($1)
		ORDER BY r.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, taskIDs)
	if err != nil {
		return mapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			r               domain.TaggingRecord
			q               domain.TaggingQuestion
			selectedOptions []byte
			questionOptions []byte
		)
		err := rows.Scan(
			&r.ID, &r.TaskID, &r.QuestionID, &selectedOptions,
			&q.ID, &q.Title, &q.Description, &q.IsMultipleChoice, &questionOptions, &q.CreatedAt,
		)
		if err != nil {
			return mapError(err)
		}

		if err := json.Unmarshal(selectedOptions, &r.SelectedOptions); err != nil {
			return fmt.Errorf("failed to decode selected options: %w", err)
		}
		if err := json.Unmarshal(questionOptions, &q.Options); err != nil {
			return fmt.Errorf("failed to decode question options: %w", err)
		}
		r.Question = &q

		if task, ok := byID[r.TaskID]; ok {
			task.Records = append(task.Records, &r)
		}
	}
	return rows.Err()
}
