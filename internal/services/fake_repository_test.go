package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

// fakeRepository is an in-memory Repository used to exercise service logic
// without postgres. WithTransaction snapshots state and restores it when fn
// fails, so all-or-nothing semantics hold in tests too.
type fakeRepository struct {
	mu sync.Mutex

	users       map[uint]models.User
	assessments map[uint]models.Assessment
	questions   map[uint]models.Question
	feedback    map[uint]models.Feedback

	nextUserID       uint
	nextAssessmentID uint
	nextQuestionID   uint
	nextFeedbackID   uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:       make(map[uint]models.User),
		assessments: make(map[uint]models.Assessment),
		questions:   make(map[uint]models.Question),
		feedback:    make(map[uint]models.Feedback),
	}
}

func (f *fakeRepository) addUser(username, email string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	u := models.User{ID: f.nextUserID, Username: username, Email: email}
	f.users[u.ID] = u
	return &u
}

func (f *fakeRepository) addAssessment(a models.Assessment) *models.Assessment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextAssessmentID++
	a.ID = f.nextAssessmentID
	f.assessments[a.ID] = a
	return &a
}

func (f *fakeRepository) addQuestion(q models.Question) *models.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextQuestionID++
	q.ID = f.nextQuestionID
	f.questions[q.ID] = q
	return &q
}

func (f *fakeRepository) User() repositories.UserRepository             { return (*fakeUserRepo)(f) }
func (f *fakeRepository) Assessment() repositories.AssessmentRepository { return (*fakeAssessmentRepo)(f) }
func (f *fakeRepository) Question() repositories.QuestionRepository     { return (*fakeQuestionRepo)(f) }
func (f *fakeRepository) Feedback() repositories.FeedbackRepository     { return (*fakeFeedbackRepo)(f) }
func (f *fakeRepository) Analytics() repositories.AnalyticsRepository   { return (*fakeAnalyticsRepo)(f) }

func (f *fakeRepository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	f.mu.Lock()
	snapshot := f.copyState()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.restoreState(snapshot)
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepository) Ping(context.Context) error { return nil }
func (f *fakeRepository) Close() error               { return nil }

type fakeState struct {
	users       map[uint]models.User
	assessments map[uint]models.Assessment
	questions   map[uint]models.Question
	feedback    map[uint]models.Feedback
}

func (f *fakeRepository) copyState() fakeState {
	s := fakeState{
		users:       make(map[uint]models.User, len(f.users)),
		assessments: make(map[uint]models.Assessment, len(f.assessments)),
		questions:   make(map[uint]models.Question, len(f.questions)),
		feedback:    make(map[uint]models.Feedback, len(f.feedback)),
	}
	for k, v := range f.users {
		s.users[k] = v
	}
	for k, v := range f.assessments {
		s.assessments[k] = v
	}
	for k, v := range f.questions {
		s.questions[k] = v
	}
	for k, v := range f.feedback {
		s.feedback[k] = v
	}
	return s
}

func (f *fakeRepository) restoreState(s fakeState) {
	f.users = s.users
	f.assessments = s.assessments
	f.questions = s.questions
	f.feedback = s.feedback
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, gorm.ErrRecordNotFound)
}

// ===== user =====

type fakeUserRepo fakeRepository

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("duplicate user: %w", gorm.ErrDuplicatedKey)
		}
	}
	f.nextUserID++
	user.ID = f.nextUserID
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (f *fakeUserRepo) Exists(_ context.Context, _ *gorm.DB, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return notFound("user")
	}
	delete(f.users, id)
	for aid, a := range f.assessments {
		if a.UserID == id {
			delete(f.assessments, aid)
			for qid, q := range f.questions {
				if q.AssessmentID == aid {
					delete(f.questions, qid)
				}
			}
		}
	}
	for fid, fb := range f.feedback {
		if fb.UserID == id {
			delete(f.feedback, fid)
		}
	}
	return nil
}

// ===== assessment =====

type fakeAssessmentRepo fakeRepository

func (f *fakeAssessmentRepo) Create(_ context.Context, _ *gorm.DB, assessment *models.Assessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextAssessmentID++
	assessment.ID = f.nextAssessmentID
	f.assessments[assessment.ID] = *assessment
	return nil
}

func (f *fakeAssessmentRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[id]
	if !ok {
		return nil, notFound("assessment")
	}
	return &a, nil
}

func (f *fakeAssessmentRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeAssessmentRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uint, activeOnly bool) ([]models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assessment
	for _, a := range f.assessments {
		if a.UserID != userID {
			continue
		}
		if activeOnly && a.Status != models.StatusPending {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAssessmentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uint, status models.AssessmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[id]
	if !ok {
		return notFound("assessment")
	}
	a.Status = status
	f.assessments[id] = a
	return nil
}

func (f *fakeAssessmentRepo) MarkExpired(_ context.Context, _ *gorm.DB, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[id]
	if !ok || a.Status != models.StatusPending {
		return false, nil
	}
	a.Status = models.StatusExpired
	f.assessments[id] = a
	return true, nil
}

func (f *fakeAssessmentRepo) FindOverdueIDs(_ context.Context, _ *gorm.DB, userID uint, now time.Time) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint
	for _, a := range f.assessments {
		if a.UserID == userID && a.Status == models.StatusPending && !a.DueDate.After(now) {
			ids = append(ids, a.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeAssessmentRepo) SetResult(_ context.Context, _ *gorm.DB, id uint, score int, status models.AssessmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[id]
	if !ok {
		return notFound("assessment")
	}
	a.Score = &score
	a.Status = status
	f.assessments[id] = a
	return nil
}

// ===== question =====

type fakeQuestionRepo fakeRepository

func (f *fakeQuestionRepo) CreateBatch(_ context.Context, _ *gorm.DB, questions []*models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range questions {
		f.nextQuestionID++
		q.ID = f.nextQuestionID
		f.questions[q.ID] = *q
	}
	return nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, notFound("question")
	}
	return &q, nil
}

func (f *fakeQuestionRepo) GetByAssessment(_ context.Context, _ *gorm.DB, assessmentID uint) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Question
	for _, q := range f.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuestionRepo) UpdateUserChoice(_ context.Context, _ *gorm.DB, id uint, choice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return notFound("question")
	}
	q.UserChoice = &choice
	f.questions[id] = q
	return nil
}

func (f *fakeQuestionRepo) DeleteByAssessment(_ context.Context, _ *gorm.DB, assessmentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, q := range f.questions {
		if q.AssessmentID == assessmentID {
			delete(f.questions, id)
		}
	}
	return nil
}

// ===== feedback =====

type fakeFeedbackRepo fakeRepository

func (f *fakeFeedbackRepo) Create(_ context.Context, _ *gorm.DB, feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextFeedbackID++
	feedback.ID = f.nextFeedbackID
	f.feedback[feedback.ID] = *feedback
	return nil
}

func (f *fakeFeedbackRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uint) ([]models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Feedback
	for _, fb := range f.feedback {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ===== analytics =====

type fakeAnalyticsRepo fakeRepository

func (f *fakeAnalyticsRepo) CountByUser(_ context.Context, _ *gorm.DB, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, a := range f.assessments {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAnalyticsRepo) CountInWindow(_ context.Context, _ *gorm.DB, userID uint, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, a := range f.assessments {
		if a.UserID == userID && inWindow(a.CreatedAt, from, to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAnalyticsRepo) FetchWindow(_ context.Context, _ *gorm.DB, userID uint, from, to time.Time) ([]models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assessment
	for _, a := range f.assessments {
		if a.UserID == userID && inWindow(a.CreatedAt, from, to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
