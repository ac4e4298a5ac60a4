package timeutil

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	// 2024-03-01 16:30:05 UTC is 2024-03-02 00:30:05 in UTC+8.
	utc := time.Date(2024, 3, 1, 16, 30, 5, 0, time.UTC)
	if got := Format(utc); got != "2024-03-02 00:30:05" {
		t.Errorf("Format = %q, want %q", got, "2024-03-02 00:30:05")
	}
}

func TestFormatPtr(t *testing.T) {
	if got := FormatPtr(nil); got != nil {
		t.Errorf("FormatPtr(nil) = %v, want nil", got)
	}

	utc := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	got := FormatPtr(&utc)
	if got == nil || *got != "2024-03-01 16:00:00" {
		t.Errorf("FormatPtr = %v, want 2024-03-01 16:00:00", got)
	}
}

func TestStamp(t *testing.T) {
	utc := time.Date(2024, 12, 31, 20, 1, 2, 0, time.UTC)
	if got := Stamp(utc); got != "20250101040102" {
		t.Errorf("Stamp = %q, want %q", got, "20250101040102")
	}
}

func TestLocationOffset(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, offset := ref.In(Location()).Zone()
	if offset != 8*60*60 {
		t.Errorf("Expected UTC+8 offset, got %d seconds", offset)
	}
}
