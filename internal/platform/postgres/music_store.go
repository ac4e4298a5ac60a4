package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/store"
)

// MusicStore implements the store.MusicStore interface using a PostgreSQL
// database as the storage backend.
type MusicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMusicStore creates a new PostgreSQL implementation of the MusicStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller.
func NewMusicStore(db store.DBTX, logger *slog.Logger) *MusicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MusicStore{
		db:     db,
		logger: logger.With(slog.String("component", "music_store")),
	}
}

// Ensure MusicStore implements store.MusicStore interface
var _ store.MusicStore = (*MusicStore)(nil)

// WithTx implements store.MusicStore.WithTx
func (s *MusicStore) WithTx(tx *sql.Tx) store.MusicStore {
	return &MusicStore{db: tx, logger: s.logger}
}

// CreateBatch implements store.MusicStore.CreateBatch
func (s *MusicStore) CreateBatch(ctx context.Context, music []*domain.Music) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO music (filepath, filename, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, m := range music {
		err := s.db.QueryRowContext(
			ctx,
			query,
			m.Filepath,
			m.Filename,
			m.DurationSeconds,
			m.CreatedAt,
		).Scan(&m.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", store.ErrMusicPathExists, m.Filepath)
			}
			log.Error("failed to insert music",
				slog.String("error", err.Error()),
				slog.String("filepath", m.Filepath))
			return mapError(err)
		}
	}

	log.Info("music batch inserted", slog.Int("count", len(music)))
	return nil
}

// GetByID implements store.MusicStore.GetByID
func (s *MusicStore) GetByID(ctx context.Context, id int64) (*domain.Music, error) {
	query := `
		SELECT id, filepath, filename, duration_seconds, created_at
		FROM music
		WHERE id = $1
	`
	return s.scanMusic(s.db.QueryRowContext(ctx, query, id))
}

// GetByPath implements store.MusicStore.GetByPath
func (s *MusicStore) GetByPath(ctx context.Context, path string) (*domain.Music, error) {
	query := `
		SELECT id, filepath, filename, duration_seconds, created_at
		FROM music
		WHERE filepath = $1
	`
	return s.scanMusic(s.db.QueryRowContext(ctx, query, path))
}

// GetByIDs implements store.MusicStore.GetByIDs
func (s *MusicStore) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Music, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, filepath, filename, duration_seconds, created_at
		FROM music
		WHERE id = ANY($1)
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.Music
	for rows.Next() {
		var m domain.Music
		if err := rows.Scan(&m.ID, &m.Filepath, &m.Filename, &m.DurationSeconds, &m.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return result, nil
}

// ExistingPaths implements store.MusicStore.ExistingPaths
func (s *MusicStore) ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(paths) == 0 {
		return existing, nil
	}

	query := `SELECT filepath FROM music WHERE filepath = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, paths)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, mapError(err)
		}
		existing[path] = true
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return existing, nil
}

// List implements store.MusicStore.List
// Each row carries the count of its reviewed tasks as valid_tagging_count.
func (s *MusicStore) List(ctx context.Context, filename string) ([]*store.MusicWithCount, error) {
	query := `
		SELECT m.id, m.filepath, m.filename, m.duration_seconds, m.created_at,
		       COUNT(t.id) FILTER (WHERE t.status = 'reviewed') AS valid_tagging_count
		FROM music m
		LEFT JOIN tagging_tasks t ON t.music_id = m.id
	`
	args := []any{}
	if filename != "" {
		args = append(args, "%"+filename+"%")
		query += " WHERE m.filename ILIKE $1"
	}
	query += `
		GROUP BY m.id
		ORDER BY m.filename ASC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*store.MusicWithCount
	for rows.Next() {
		var m store.MusicWithCount
		if err := rows.Scan(&m.ID, &m.Filepath, &m.Filename, &m.DurationSeconds, &m.CreatedAt, &m.ValidTaggingCount); err != nil {
			return nil, mapError(err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return result, nil
}

// Delete implements store.MusicStore.Delete
func (s *MusicStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM music WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkRowsAffected(result, store.ErrMusicNotFound)
}

func (s *MusicStore) scanMusic(row *sql.Row) (*domain.Music, error) {
	var m domain.Music
	err := row.Scan(&m.ID, &m.Filepath, &m.Filename, &m.DurationSeconds, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrMusicNotFound
		}
		return nil, mapError(err)
	}
	return &m, nil
}
