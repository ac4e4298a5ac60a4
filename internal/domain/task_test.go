package domain

import (
	"errors"
	"testing"
)

func TestParseTaskStatus(t *testing.T) {
	for _, valid := range []string{"pending", "tagged", "reviewed", "rejected"} {
		status, err := ParseTaskStatus(valid)
		if err != nil {
			t.Errorf("ParseTaskStatus(%q): expected no error, got %v", valid, err)
		}
		if string(status) != valid {
			t.Errorf("ParseTaskStatus(%q): got %s", valid, status)
		}
	}

	for _, invalid := range []string{"", "done", "Pending"} {
		if _, err := ParseTaskStatus(invalid); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseTaskStatus(%q): expected ErrInvalidStatus, got %v", invalid, err)
		}
	}
}

func TestTaskStatusTransitions(t *testing.T) {
	cases := []struct {
		status     TaskStatus
		taggable   bool
		reviewable bool
	}{
		{TaskPending, true, false},
		{TaskTagged, false, true},
		{TaskReviewed, false, false},
		{TaskRejected, true, false},
	}
	for _, tc := range cases {
		if got := tc.status.Taggable(); got != tc.taggable {
			t.Errorf("%s.Taggable() = %v, want %v", tc.status, got, tc.taggable)
		}
		if got := tc.status.Reviewable(); got != tc.reviewable {
			t.Errorf("%s.Reviewable() = %v, want %v", tc.status, got, tc.reviewable)
		}
	}
}

func TestParseReviewResult(t *testing.T) {
	agreed, err := ParseReviewResult("agreed")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if agreed.NextStatus() != TaskReviewed {
		t.Errorf("agreed should lead to reviewed, got %s", agreed.NextStatus())
	}

	disagreed, err := ParseReviewResult("disagreed")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if disagreed.NextStatus() != TaskRejected {
		t.Errorf("disagreed should lead to rejected, got %s", disagreed.NextStatus())
	}

	if _, err := ParseReviewResult("maybe"); !errors.Is(err, ErrInvalidReviewResult) {
		t.Errorf("Expected ErrInvalidReviewResult, got %v", err)
	}
}

func TestNewTaggingTask(t *testing.T) {
	task := NewTaggingTask(1, 2, 3, 4)
	if task.Status != TaskPending {
		t.Errorf("New task should be pending, got %s", task.Status)
	}
	if task.MusicID != 1 || task.TaggerID != 2 || task.ReviewerID != 3 || task.CreatorID != 4 {
		t.Error("Task should keep its music, tagger, reviewer and creator IDs")
	}
	if task.TaggingTime != nil || task.ReviewTime != nil {
		t.Error("New task should carry no timestamps yet")
	}
}

func TestValidateAnswer(t *testing.T) {
	single := &TaggingQuestion{Title: "genre", IsMultipleChoice: false}
	multiple := &TaggingQuestion{Title: "instruments", IsMultipleChoice: true}

	if err := ValidateAnswer(single, []string{"jazz"}); err != nil {
		t.Errorf("One option on single-choice should pass, got %v", err)
	}
	if err := ValidateAnswer(single, []string{"jazz", "rock"}); !errors.Is(err, ErrSingleChoice) {
		t.Errorf("Expected ErrSingleChoice, got %v", err)
	}
	if err := ValidateAnswer(multiple, []string{"piano", "drums"}); err != nil {
		t.Errorf("Many options on multiple-choice should pass, got %v", err)
	}
	if err := ValidateAnswer(multiple, nil); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("Expected ErrEmptyAnswer, got %v", err)
	}
	if err := ValidateAnswer(single, []string{}); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("Expected ErrEmptyAnswer, got %v", err)
	}
}
