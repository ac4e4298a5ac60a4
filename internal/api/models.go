package api

import (
	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/platform/timeutil"
	"github.com/annotune/annotune-api/internal/store"
)

// RegisterRequest carries a new user's credentials and role.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// QuestionOperateRequest multiplexes create, update and delete of
// annotation questions on a single endpoint.
type QuestionOperateRequest struct {
	Operation        string   `json:"operation" validate:"required,oneof=create update delete"`
	ID               int64    `json:"id,omitempty"`
	Title            string   `json:"title,omitempty"`
	Description      *string  `json:"description,omitempty"`
	IsMultipleChoice *bool    `json:"is_multiple_choice,omitempty"`
	Options          []string `json:"options,omitempty"`
}

// TagRequest submits the selected options for one tagging record.
type TagRequest struct {
	ID              int64    `json:"id" validate:"required"`
	SelectedOptions []string `json:"selected_options"`
}

// TaskOperateRequest multiplexes create, delete, finish and review of
// tagging tasks on a single endpoint.
type TaskOperateRequest struct {
	Operation     string  `json:"operation" validate:"required,oneof=create delete finish review"`
	ID            int64   `json:"id,omitempty"`
	MusicID       int64   `json:"music_id,omitempty"`
	QuestionIDs   []int64 `json:"question_ids,omitempty"`
	TaggerID      int64   `json:"tagger_id,omitempty"`
	ReviewerID    int64   `json:"reviewer_id,omitempty"`
	ReviewResult  string  `json:"review_result,omitempty"`
	ReviewComment *string `json:"review_comment,omitempty"`
}

// UserResponse is the public view of a user. Password material never
// leaves the service layer.
type UserResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	CreateTime string `json:"create_time"`
}

func newUserResponse(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       string(u.Role),
		CreateTime: timeutil.Format(u.CreatedAt),
	}
}

// MusicResponse is the public view of a registered music file, including
// how many of its tasks have passed review.
type MusicResponse struct {
	ID                int64  `json:"id"`
	Filepath          string `json:"filepath"`
	Filename          string `json:"filename"`
	DurationSeconds   int    `json:"duration"`
	ValidTaggingCount int    `json:"valid_tagging_count"`
	CreateTime        string `json:"create_time"`
}

func newMusicResponse(m *domain.Music, validCount int) *MusicResponse {
	if m == nil {
		return nil
	}
	return &MusicResponse{
		ID:                m.ID,
		Filepath:          m.Filepath,
		Filename:          m.Filename,
		DurationSeconds:   m.DurationSeconds,
		ValidTaggingCount: validCount,
		CreateTime:        timeutil.Format(m.CreatedAt),
	}
}

func newMusicListResponse(items []*store.MusicWithCount) []*MusicResponse {
	out := make([]*MusicResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newMusicResponse(&item.Music, item.ValidTaggingCount))
	}
	return out
}

// QuestionResponse is the public view of an annotation question.
type QuestionResponse struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IsMultipleChoice bool     `json:"is_multiple_choice"`
	Options          []string `json:"options"`
	CreateTime       string   `json:"create_time"`
}

func newQuestionResponse(q *domain.TaggingQuestion) *QuestionResponse {
	if q == nil {
		return nil
	}
	options := q.Options
	if options == nil {
		options = []string{}
	}
	return &QuestionResponse{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		IsMultipleChoice: q.IsMultipleChoice,
		Options:          options,
		CreateTime:       timeutil.Format(q.CreatedAt),
	}
}

func newQuestionListResponse(items []*domain.TaggingQuestion) []*QuestionResponse {
	out := make([]*QuestionResponse, 0, len(items))
	for _, q := range items {
		out = append(out, newQuestionResponse(q))
	}
	return out
}

// RecordResponse is one question/answer pair inside a task.
type RecordResponse struct {
	ID              int64             `json:"id"`
	Question        *QuestionResponse `json:"question"`
	SelectedOptions []string          `json:"selected_options"`
}

func newRecordResponse(rec *domain.TaggingRecord) *RecordResponse {
	selected := rec.SelectedOptions
	if selected == nil {
		selected = []string{}
	}
	return &RecordResponse{
		ID:              rec.ID,
		Question:        newQuestionResponse(rec.Question),
		SelectedOptions: selected,
	}
}

// TaskResponse is the fully hydrated view of a tagging task.
type TaskResponse struct {
	ID              int64             `json:"id"`
	Music           *MusicResponse    `json:"music"`
	Status          string            `json:"status"`
	Tagger          *UserResponse     `json:"tagger"`
	TaggingTime     *string           `json:"tagging_time"`
	Reviewer        *UserResponse     `json:"reviewer"`
	ReviewerComment *string           `json:"reviewer_comment"`
	ReviewTime      *string           `json:"review_time"`
	Creator         *UserResponse     `json:"creator"`
	CreateTime      string            `json:"create_time"`
	Records         []*RecordResponse `json:"records"`
}

func newTaskResponse(t *domain.TaggingTask) *TaskResponse {
	records := make([]*RecordResponse, 0, len(t.Records))
	for _, rec := range t.Records {
		records = append(records, newRecordResponse(rec))
	}
	return &TaskResponse{
		ID:              t.ID,
		Music:           newMusicResponse(t.Music, 0),
		Status:          string(t.Status),
		Tagger:          newUserResponse(t.Tagger),
		TaggingTime:     timeutil.FormatPtr(t.TaggingTime),
		Reviewer:        newUserResponse(t.Reviewer),
		ReviewerComment: t.ReviewerComment,
		ReviewTime:      timeutil.FormatPtr(t.ReviewTime),
		Creator:         newUserResponse(t.Creator),
		CreateTime:      timeutil.Format(t.CreatedAt),
		Records:         records,
	}
}

// TaskListResponse is one page of tasks plus paging metadata.
type TaskListResponse struct {
	Items    []*TaskResponse `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func newTaskListResponse(page *store.TaskPage) *TaskListResponse {
	items := make([]*TaskResponse, 0, len(page.Items))
	for _, t := range page.Items {
		items = append(items, newTaskResponse(t))
	}
	return &TaskListResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}
