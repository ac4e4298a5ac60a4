package domain

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a tagging task. Transitions follow
// pending → tagged → reviewed|rejected, with rejected tasks re-enterable
// by the tagger (rejected → tagged). Reviewed is terminal.
type TaskStatus string

// The four task states.
const (
	TaskPending  TaskStatus = "pending"
	TaskTagged   TaskStatus = "tagged"
	TaskReviewed TaskStatus = "reviewed"
	TaskRejected TaskStatus = "rejected"
)

// ParseTaskStatus converts a string into a TaskStatus.
// Returns ErrInvalidStatus for unknown values.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskPending, TaskTagged, TaskReviewed, TaskRejected:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Valid reports whether the status is one of the recognized values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskTagged, TaskReviewed, TaskRejected:
		return true
	}
	return false
}

// Taggable reports whether a task in this status accepts answer submission
// and finishing. Only pending and rejected tasks may be (re-)tagged; a task
// awaiting or past review is frozen for the tagger.
func (s TaskStatus) Taggable() bool {
	return s == TaskPending || s == TaskRejected
}

// Reviewable reports whether a task in this status accepts a review.
func (s TaskStatus) Reviewable() bool {
	return s == TaskTagged
}

// ReviewResult is a reviewer's verdict on a tagged task.
type ReviewResult string

// The two review outcomes.
const (
	ReviewAgreed    ReviewResult = "agreed"
	ReviewDisagreed ReviewResult = "disagreed"
)

// ParseReviewResult converts a string into a ReviewResult.
// Returns ErrInvalidReviewResult for unknown values.
func ParseReviewResult(s string) (ReviewResult, error) {
	switch ReviewResult(s) {
	case ReviewAgreed, ReviewDisagreed:
		return ReviewResult(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReviewResult, s)
	}
}

// NextStatus returns the task status implied by the verdict:
// agreed → reviewed, disagreed → rejected.
func (r ReviewResult) NextStatus() TaskStatus {
	if r == ReviewAgreed {
		return TaskReviewed
	}
	return TaskRejected
}

// TaggingTask is one unit of annotation work binding a music file to a
// tagger and a reviewer across a fixed set of questions. A task always owns
// at least one record once created.
type TaggingTask struct {
	ID              int64      `json:"id"`
	MusicID         int64      `json:"music_id"`
	Status          TaskStatus `json:"status"`
	TaggerID        int64      `json:"tagger_id"`
	TaggingTime     *time.Time `json:"tagging_time,omitempty"`
	ReviewerID      int64      `json:"reviewer_id"`
	ReviewerComment *string    `json:"reviewer_comment,omitempty"`
	ReviewTime      *time.Time `json:"review_time,omitempty"`
	CreatorID       int64      `json:"creator_id"`
	CreatedAt       time.Time  `json:"created_at"`

	// Hydrated relationships, populated by list queries.
	Music    *Music           `json:"music,omitempty"`
	Tagger   *User            `json:"tagger,omitempty"`
	Reviewer *User            `json:"reviewer,omitempty"`
	Creator  *User            `json:"creator,omitempty"`
	Records  []*TaggingRecord `json:"records,omitempty"`
}

// NewTaggingTask creates a pending task for the given music, tagger,
// reviewer and creator. Records are attached by the workflow service.
func NewTaggingTask(musicID, taggerID, reviewerID, creatorID int64) *TaggingTask {
	return &TaggingTask{
		MusicID:    musicID,
		Status:     TaskPending,
		TaggerID:   taggerID,
		ReviewerID: reviewerID,
		CreatorID:  creatorID,
		CreatedAt:  time.Now().UTC(),
	}
}

// TaggingRecord is one question's answer slot within a task.
// SelectedOptions stays empty until the tagger answers.
type TaggingRecord struct {
	ID              int64    `json:"id"`
	TaskID          int64    `json:"task_id"`
	QuestionID      int64    `json:"question_id"`
	SelectedOptions []string `json:"selected_options"`

	// Hydrated relationship, populated by list queries.
	Question *TaggingQuestion `json:"question,omitempty"`
}

// ValidateAnswer checks a submitted answer against the question's
// cardinality rule: at least one option, and at most one when the question
// is single-choice.
func ValidateAnswer(question *TaggingQuestion, selectedOptions []string) error {
	if len(selectedOptions) == 0 {
		return ErrEmptyAnswer
	}
	if !question.IsMultipleChoice && len(selectedOptions) > 1 {
		return ErrSingleChoice
	}
	return nil
}
