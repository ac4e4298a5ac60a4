package domain

import "time"

// TaggingQuestion is an annotation question template. Tasks reference a set
// of questions at creation time; each referencing record stores the answer.
type TaggingQuestion struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	IsMultipleChoice bool      `json:"is_multiple_choice"`
	Options          []string  `json:"options"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewTaggingQuestion creates a question template.
// Returns an error if validation fails.
func NewTaggingQuestion(title, description string, isMultipleChoice bool, options []string) (*TaggingQuestion, error) {
	q := &TaggingQuestion{
		Title:            title,
		Description:      description,
		IsMultipleChoice: isMultipleChoice,
		Options:          options,
		CreatedAt:        time.Now().UTC(),
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks if the question has valid data.
func (q *TaggingQuestion) Validate() error {
	if q.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}

// QuestionPatch describes a partial update to a question. Nil fields are
// left untouched; non-nil fields overwrite, including explicit false and
// empty-list values.
type QuestionPatch struct {
	Description      *string
	IsMultipleChoice *bool
	Options          []string
}

// Apply writes the present fields of the patch onto the question.
func (q *TaggingQuestion) Apply(p QuestionPatch) {
	if p.Description != nil {
		q.Description = *p.Description
	}
	if p.IsMultipleChoice != nil {
		q.IsMultipleChoice = *p.IsMultipleChoice
	}
	if p.Options != nil {
		q.Options = p.Options
	}
}
