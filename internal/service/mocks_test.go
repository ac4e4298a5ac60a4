package service

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/annotune/annotune-api/internal/domain"
	"github.com/annotune/annotune-api/internal/store"
)

// noTx runs the transaction function without a real transaction. The fake
// stores ignore the tx handle, so services under test behave as if every
// statement committed immediately.
func noTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeStores is an in-memory implementation of every store interface,
// wired together so task listings can hydrate users and questions.
type fakeStores struct {
	users     *fakeUserStore
	music     *fakeMusicStore
	questions *fakeQuestionStore
	tasks     *fakeTaskStore
}

func newFakeStores() *fakeStores {
	users := &fakeUserStore{rows: map[int64]*domain.User{}}
	music := &fakeMusicStore{rows: map[int64]*domain.Music{}, counts: map[int64]int{}}
	questions := &fakeQuestionStore{rows: map[int64]*domain.TaggingQuestion{}}
	tasks := &fakeTaskStore{
		rows:      map[int64]*domain.TaggingTask{},
		records:   map[int64]*domain.TaggingRecord{},
		users:     users,
		questions: questions,
	}
	return &fakeStores{users: users, music: music, questions: questions, tasks: tasks}
}

// mustAddUser seeds a user, panicking on an impossible setup error.
func (f *fakeStores) mustAddUser(username string, role domain.Role) *domain.User {
	user, err := domain.NewUser(username, "hashed-"+username, role)
	if err != nil {
		panic(err)
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

type fakeUserStore struct {
	rows   map[int64]*domain.User
	nextID int64
	err    error // When set, every method fails with it
}

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.rows {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.rows[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.rows[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.rows {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(_ context.Context, keyword string, role domain.Role) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.User
	for _, user := range f.rows {
		if role != "" && user.Role != role {
			continue
		}
		if keyword != "" {
			byName := strings.Contains(strings.ToLower(user.Username), strings.ToLower(keyword))
			id, convErr := strconv.ParseInt(keyword, 10, 64)
			byID := convErr == nil && user.ID == id
			if !byName && !byID {
				continue
			}
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUserStore) WithTx(*sql.Tx) store.UserStore { return f }

type fakeMusicStore struct {
	rows   map[int64]*domain.Music
	counts map[int64]int
	nextID int64
	err    error
}

var _ store.MusicStore = (*fakeMusicStore)(nil)

func (f *fakeMusicStore) CreateBatch(_ context.Context, music []*domain.Music) error {
	if f.err != nil {
		return f.err
	}
	for _, m := range music {
		f.nextID++
		m.ID = f.nextID
		f.rows[m.ID] = m
	}
	return nil
}

func (f *fakeMusicStore) GetByID(_ context.Context, id int64) (*domain.Music, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.rows[id]
	if !ok {
		return nil, store.ErrMusicNotFound
	}
	return m, nil
}

func (f *fakeMusicStore) GetByIDs(_ context.Context, ids []int64) ([]*domain.Music, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Music
	for _, id := range ids {
		if m, ok := f.rows[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMusicStore) GetByPath(_ context.Context, path string) (*domain.Music, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.rows {
		if m.Filepath == path {
			return m, nil
		}
	}
	return nil, store.ErrMusicNotFound
}

func (f *fakeMusicStore) ExistingPaths(_ context.Context, paths []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	existing := make(map[string]bool)
	for _, m := range f.rows {
		existing[m.Filepath] = true
	}
	out := make(map[string]bool)
	for _, p := range paths {
		if existing[p] {
			out[p] = true
		}
	}
	return out, nil
}

func (f *fakeMusicStore) List(_ context.Context, filename string) ([]*store.MusicWithCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*store.MusicWithCount
	for _, m := range f.rows {
		if filename != "" && !strings.Contains(strings.ToLower(m.Filename), strings.ToLower(filename)) {
			continue
		}
		out = append(out, &store.MusicWithCount{Music: *m, ValidTaggingCount: f.counts[m.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (f *fakeMusicStore) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return store.ErrMusicNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMusicStore) WithTx(*sql.Tx) store.MusicStore { return f }

type fakeQuestionStore struct {
	rows   map[int64]*domain.TaggingQuestion
	nextID int64
	err    error
}

var _ store.QuestionStore = (*fakeQuestionStore)(nil)

func (f *fakeQuestionStore) Create(_ context.Context, question *domain.TaggingQuestion) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.rows {
		if existing.Title == question.Title {
			return store.ErrQuestionTitleExists
		}
	}
	f.nextID++
	question.ID = f.nextID
	f.rows[question.ID] = question
	return nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id int64) (*domain.TaggingQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.rows[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	return q, nil
}

func (f *fakeQuestionStore) GetByIDs(_ context.Context, ids []int64) ([]*domain.TaggingQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.TaggingQuestion
	for _, id := range ids {
		if q, ok := f.rows[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) Update(_ context.Context, question *domain.TaggingQuestion) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[question.ID]; !ok {
		return store.ErrQuestionNotFound
	}
	f.rows[question.ID] = question
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return store.ErrQuestionNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeQuestionStore) List(_ context.Context) ([]*domain.TaggingQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.TaggingQuestion
	for _, q := range f.rows {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeQuestionStore) WithTx(*sql.Tx) store.QuestionStore { return f }

type fakeTaskStore struct {
	rows         map[int64]*domain.TaggingTask
	records      map[int64]*domain.TaggingRecord
	nextTaskID   int64
	nextRecordID int64
	err          error

	users     *fakeUserStore
	questions *fakeQuestionStore

	lastFilter store.TaskFilter
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(_ context.Context, task *domain.TaggingTask, questionIDs []int64) error {
	if f.err != nil {
		return f.err
	}
	f.nextTaskID++
	task.ID = f.nextTaskID
	f.rows[task.ID] = task
	for _, qid := range questionIDs {
		f.nextRecordID++
		f.records[f.nextRecordID] = &domain.TaggingRecord{
			ID:              f.nextRecordID,
			TaskID:          task.ID,
			QuestionID:      qid,
			SelectedOptions: []string{},
		}
	}
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*domain.TaggingTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	task, ok := f.rows[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) GetRecord(_ context.Context, id int64) (*domain.TaggingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	record.Question = f.questions.rows[record.QuestionID]
	return record, nil
}

func (f *fakeTaskStore) UpdateRecordOptions(_ context.Context, id int64, selectedOptions []string) error {
	if f.err != nil {
		return f.err
	}
	record, ok := f.records[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	record.SelectedOptions = selectedOptions
	return nil
}

func (f *fakeTaskStore) MarkTagged(_ context.Context, id, taggerID int64, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	task, ok := f.rows[id]
	if !ok || !task.Status.Taggable() {
		return domain.ErrInvalidTransition
	}
	task.Status = domain.TaskTagged
	task.TaggerID = taggerID
	task.TaggingTime = &at
	return nil
}

func (f *fakeTaskStore) MarkReviewed(_ context.Context, id int64, status domain.TaskStatus, reviewerID int64, comment *string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	task, ok := f.rows[id]
	if !ok || !task.Status.Reviewable() {
		return domain.ErrInvalidTransition
	}
	task.Status = status
	task.ReviewerID = reviewerID
	task.ReviewerComment = comment
	task.ReviewTime = &at
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.rows, id)
	for rid, record := range f.records {
		if record.TaskID == id {
			delete(f.records, rid)
		}
	}
	return nil
}

func (f *fakeTaskStore) DeleteByMusic(_ context.Context, musicID int64) error {
	if f.err != nil {
		return f.err
	}
	for id, task := range f.rows {
		if task.MusicID == musicID {
			delete(f.rows, id)
			for rid, record := range f.records {
				if record.TaskID == id {
					delete(f.records, rid)
				}
			}
		}
	}
	return nil
}

func (f *fakeTaskStore) DeleteRecordsByQuestion(_ context.Context, questionID int64) error {
	if f.err != nil {
		return f.err
	}
	for rid, record := range f.records {
		if record.QuestionID == questionID {
			delete(f.records, rid)
		}
	}
	return nil
}

func (f *fakeTaskStore) List(_ context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	var items []*domain.TaggingTask
	for _, task := range f.rows {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.TaggerID != 0 && task.TaggerID != filter.TaggerID {
			continue
		}
		if filter.ReviewerID != 0 && task.ReviewerID != filter.ReviewerID {
			continue
		}
		items = append(items, task)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	total := len(items)
	offset := filter.Offset()
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + filter.PageSize
	if end > len(items) {
		end = len(items)
	}
	return &store.TaskPage{
		Items:    items[offset:end],
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (f *fakeTaskStore) ListReviewedByMusic(_ context.Context, musicIDs []int64) ([]*domain.TaggingTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[int64]bool, len(musicIDs))
	for _, id := range musicIDs {
		wanted[id] = true
	}
	var out []*domain.TaggingTask
	for _, task := range f.rows {
		if task.Status != domain.TaskReviewed || !wanted[task.MusicID] {
			continue
		}
		hydrated := *task
		hydrated.Tagger = f.users.rows[task.TaggerID]
		hydrated.Records = nil
		for _, record := range f.records {
			if record.TaskID != task.ID {
				continue
			}
			rec := *record
			rec.Question = f.questions.rows[record.QuestionID]
			hydrated.Records = append(hydrated.Records, &rec)
		}
		sort.Slice(hydrated.Records, func(i, j int) bool { return hydrated.Records[i].ID < hydrated.Records[j].ID })
		out = append(out, &hydrated)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskStore) WithTx(*sql.Tx) store.TaskStore { return f }
