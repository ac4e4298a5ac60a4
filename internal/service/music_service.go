package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/store"
)

// BatchResult reports the per-item outcome of a bulk music registration.
// A bad path never aborts the batch; it lands in ErrorPaths instead.
type BatchResult struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	SuccessIDs   []int64  `json:"success_ids"`
	ErrorPaths   []string `json:"error_paths"`
}

// MusicFile is the raw content of a registered audio file, ready to stream.
type MusicFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// MusicService provides bulk registration, deletion, listing and raw file
// retrieval for music rows.
type MusicService struct {
	runTx      TxRunner
	musicStore store.MusicStore
	taskStore  store.TaskStore
	logger     *slog.Logger
}

// NewMusicService creates a MusicService with the given dependencies.
func NewMusicService(
	runTx TxRunner,
	musicStore store.MusicStore,
	taskStore store.TaskStore,
	log *slog.Logger,
) *MusicService {
	if log == nil {
		log = slog.Default()
	}
	return &MusicService{
		runTx:      runTx,
		musicStore: musicStore,
		taskStore:  taskStore,
		logger:     log.With(slog.String("component", "music_service")),
	}
}

// RegisterBatch registers each path as a music row. Per-path failures
// (already registered, unsupported extension, missing on disk) are reported
// in the result; the surviving rows commit in one transaction.
// Requires the admin role.
func (s *MusicService) RegisterBatch(ctx context.Context, caller *domain.User, paths []string) (*BatchResult, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.musicStore.ExistingPaths(ctx, paths)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		SuccessIDs: []int64{},
		ErrorPaths: []string{},
	}
	var staged []*domain.Music

	for _, path := range paths {
		if existing[path] {
			result.ErrorPaths = append(result.ErrorPaths,
				fmt.Sprintf("%s (already registered: %s)", path, domain.TitleFromPath(path)))
			continue
		}
		if !domain.IsSupportedAudio(path) {
			result.ErrorPaths = append(result.ErrorPaths,
				fmt.Sprintf("%s (unsupported format: %s)", path, filepath.Ext(path)))
			continue
		}
		if _, err := os.Stat(path); err != nil {
			result.ErrorPaths = append(result.ErrorPaths,
				fmt.Sprintf("%s (file does not exist)", path))
			continue
		}

		// Later duplicates of the same path within one batch are rejected
		// the same way as rows already in the store.
		existing[path] = true
		staged = append(staged, domain.NewMusic(path))
	}

	if len(staged) > 0 {
		err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return s.musicStore.WithTx(tx).CreateBatch(ctx, staged)
		})
		if err != nil {
			return nil, err
		}
		for _, m := range staged {
			result.SuccessIDs = append(result.SuccessIDs, m.ID)
		}
	}

	result.SuccessCount = len(result.SuccessIDs)
	result.ErrorCount = len(result.ErrorPaths)

	log.Info("music batch registered",
		slog.Int("success_count", result.SuccessCount),
		slog.Int("error_count", result.ErrorCount))
	return result, nil
}

// Delete removes a music row together with all its tasks and their records
// in one transaction. Requires the admin role.
// Returns store.ErrMusicNotFound for an unknown ID.
func (s *MusicService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		musicStore := s.musicStore.WithTx(tx)

		if _, err := musicStore.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.taskStore.WithTx(tx).DeleteByMusic(ctx, id); err != nil {
			return err
		}
		return musicStore.Delete(ctx, id)
	})
}

// List returns music rows ordered by filename, optionally filtered by a
// case-insensitive filename substring, each with its reviewed-task count.
func (s *MusicService) List(ctx context.Context, filename string) ([]*store.MusicWithCount, error) {
	return s.musicStore.List(ctx, filename)
}

// GetFile validates that the path exists, is a regular file and is
// registered, then returns the raw bytes with a content type derived from
// the extension.
func (s *MusicService) GetFile(ctx context.Context, path string) (*MusicFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ErrFileNotFound
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotAFile
	}

	if _, err := s.musicStore.GetByPath(ctx, path); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrUnregisteredMusic
		}
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read music file: %w", err)
	}

	return &MusicFile{
		Content:     content,
		ContentType: domain.AudioContentType(path),
		Filename:    filepath.Base(path),
	}, nil
}
