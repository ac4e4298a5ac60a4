package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Music represents one registered audio file. The row points at a file on
// the local filesystem; the platform never copies or moves the audio itself.
type Music struct {
	ID              int64     `json:"id"`
	Filepath        string    `json:"filepath"`
	Filename        string    `json:"filename"`
	DurationSeconds int       `json:"duration"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewMusic creates a Music row for the given path. The filename is derived
// from the path's base name with the extension stripped.
func NewMusic(path string) *Music {
	return &Music{
		Filepath:  path,
		Filename:  TitleFromPath(path),
		CreatedAt: time.Now().UTC(),
	}
}

// IsSupportedAudio reports whether the path carries one of the accepted
// audio extensions (.mp3 or .wav, case-insensitive).
func IsSupportedAudio(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

// AudioContentType returns the MIME type for an audio path by extension:
// audio/mpeg for .mp3, audio/wav otherwise.
func AudioContentType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return "audio/mpeg"
	}
	return "audio/wav"
}

// TitleFromPath derives the display filename from a filesystem path:
// the base name with its extension removed.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
