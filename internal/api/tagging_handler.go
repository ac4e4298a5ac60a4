package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/service"
	"github.com/annotune/annotune-api/internal/store"
)

// TaggingHandler serves question management, answer submission, task
// workflow and export endpoints.
type TaggingHandler struct {
	questionService *service.QuestionService
	taskService     *service.TaskService
	validate        *validator.Validate
	logger          *slog.Logger
}

// NewTaggingHandler creates a TaggingHandler with the given dependencies.
func NewTaggingHandler(
	questionService *service.QuestionService,
	taskService *service.TaskService,
	validate *validator.Validate,
	logger *slog.Logger,
) *TaggingHandler {
	return &TaggingHandler{
		questionService: questionService,
		taskService:     taskService,
		validate:        validate,
		logger:          logger.With(slog.String("component", "tagging_handler")),
	}
}

// QuestionOperate handles POST /tagging/question/operate, dispatching on
// the operation field.
func (h *TaggingHandler) QuestionOperate(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req QuestionOperateRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	switch req.Operation {
	case "create":
		description := ""
		if req.Description != nil {
			description = *req.Description
		}
		isMultiple := false
		if req.IsMultipleChoice != nil {
			isMultiple = *req.IsMultipleChoice
		}
		id, err := h.questionService.Create(r.Context(), caller, req.Title, description, isMultiple, req.Options)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		shared.RespondWithData(w, r, map[string]int64{"id": id})

	case "update":
		if req.ID == 0 {
			shared.RespondWithBusinessError(w, r, "id is required")
			return
		}
		patch := domain.QuestionPatch{
			Description:      req.Description,
			IsMultipleChoice: req.IsMultipleChoice,
			Options:          req.Options,
		}
		if err := h.questionService.Update(r.Context(), caller, req.ID, patch); err != nil {
			respondServiceError(w, r, err)
			return
		}
		shared.RespondWithData(w, r, map[string]int64{"id": req.ID})

	case "delete":
		if req.ID == 0 {
			shared.RespondWithBusinessError(w, r, "id is required")
			return
		}
		if err := h.questionService.Delete(r.Context(), caller, req.ID); err != nil {
			respondServiceError(w, r, err)
			return
		}
		shared.RespondWithData(w, r, map[string]int64{"id": req.ID})
	}
}

// QuestionList handles GET /tagging/question/list.
func (h *TaggingHandler) QuestionList(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionService.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithData(w, r, newQuestionListResponse(questions))
}

// Tag handles POST /tagging/tag, writing the selected options of one
// record on a task the caller is still allowed to edit.
func (h *TaggingHandler) Tag(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req TagRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	if err := h.taskService.SubmitAnswer(r.Context(), caller, req.ID, req.SelectedOptions); err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, map[string]int64{"id": req.ID})
}

// TaskOperate handles POST /tagging/task/operate, dispatching on the
// operation field.
func (h *TaggingHandler) TaskOperate(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req TaskOperateRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	switch req.Operation {
	case "create":
		id, err := h.taskService.Create(r.Context(), caller, req.MusicID, req.TaggerID, req.ReviewerID, req.QuestionIDs)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		shared.RespondWithData(w, r, map[string]int64{"id": id})
		return
	}

	if req.ID == 0 {
		shared.RespondWithBusinessError(w, r, "id is required")
		return
	}

	var err error
	switch req.Operation {
	case "delete":
		err = h.taskService.Delete(r.Context(), caller, req.ID)
	case "finish":
		err = h.taskService.Finish(r.Context(), caller, req.ID)
	case "review":
		err = h.taskService.Review(r.Context(), caller, req.ID, req.ReviewResult, req.ReviewComment)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, map[string]int64{"id": req.ID})
}

// TaskList handles GET /tagging/task/list with paging and filters.
func (h *TaggingHandler) TaskList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		shared.RespondWithBusinessError(w, r, err.Error())
		return
	}

	page, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, newTaskListResponse(page))
}

// Download handles GET /tagging/download?music_ids= and streams the
// reviewed-annotation export as a JSON attachment. This endpoint is not
// enveloped.
func (h *TaggingHandler) Download(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	musicIDs, err := parseIDList(r.URL.Query()["music_ids"])
	if err != nil {
		shared.RespondWithBusinessError(w, r, "music_ids must be integers")
		return
	}
	if len(musicIDs) == 0 {
		shared.RespondWithBusinessError(w, r, "music_ids is required")
		return
	}

	doc, err := h.taskService.Export(r.Context(), caller, musicIDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(doc.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))

	if _, err := w.Write(doc.Content); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream export document",
			slog.String("error", err.Error()))
	}
}

// parseTaskFilter builds a task listing filter from query parameters. An
// error carries the user-facing message for the offending parameter.
func parseTaskFilter(query url.Values) (store.TaskFilter, error) {
	filter := store.TaskFilter{
		Keyword: query.Get("keyword"),
		Status:  domain.TaskStatus(query.Get("status")),
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return store.TaskFilter{}, errors.New("page must be an integer")
		}
		filter.Page = page
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return store.TaskFilter{}, errors.New("page_size must be an integer")
		}
		filter.PageSize = size
	}
	if raw := query.Get("tagger_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return store.TaskFilter{}, errors.New("tagger_id must be an integer")
		}
		filter.TaggerID = id
	}
	if raw := query.Get("reviewer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return store.TaskFilter{}, errors.New("reviewer_id must be an integer")
		}
		filter.ReviewerID = id
	}

	return filter, nil
}

// parseIDList accepts both repeated query parameters and comma separated
// values, so ?music_ids=1&music_ids=2 and ?music_ids=1,2 are equivalent.
func parseIDList(values []string) ([]int64, error) {
	var ids []int64
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
