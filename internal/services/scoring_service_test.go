package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/accessgenius/assessment-service/internal/events"
	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/validator"
)

func newTestScoring(repo *fakeRepository) (*scoringService, *events.MockEventPublisher) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	return &scoringService{
		repo:      repo,
		logger:    logger,
		validator: validator.New(),
		publisher: publisher,
		now:       time.Now,
	}, publisher
}

func seedAssessmentWithKeys(t *testing.T, repo *fakeRepository, userID uint, keys []string) (*models.Assessment, []uint) {
	t.Helper()
	now := time.Now()
	assessment := repo.addAssessment(models.Assessment{
		UserID:    userID,
		Subject:   "Math",
		Status:    models.StatusPending,
		CreatedAt: now,
		DueDate:   now.AddDate(0, 0, 3),
	})

	ids := make([]uint, len(keys))
	for i, key := range keys {
		q := seedQuestion(t, repo, assessment.ID, key)
		ids[i] = q.ID
	}
	return assessment, ids
}

func TestSubmitCountsExactMatches(t *testing.T) {
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")

	// Five questions with keys a,b,a,c,d; q3 answered wrong, q5 omitted.
	assessment, ids := seedAssessmentWithKeys(t, repo, user.ID, []string{"a", "b", "a", "c", "d"})

	svc, publisher := newTestScoring(repo)

	result, err := svc.Submit(context.Background(), user.ID, &SubmitAssessmentRequest{
		AssessmentID: assessment.ID,
		Answers: map[string]string{
			itoa(ids[0]): "a",
			itoa(ids[1]): "b",
			itoa(ids[2]): "x",
			itoa(ids[3]): "c",
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 3 {
		t.Errorf("score = %d, want 3", result.Score)
	}

	stored := repo.assessments[assessment.ID]
	if stored.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", stored.Status)
	}
	if stored.ScoreValue() != 3 {
		t.Errorf("persisted score = %d, want 3", stored.ScoreValue())
	}
	if got := len(publisher.EventsFor(events.TopicAssessmentSubmitted)); got != 1 {
		t.Errorf("submitted events = %d, want 1", got)
	}
}

func TestSubmitIgnoresUnknownQuestionIDs(t *testing.T) {
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")
	assessment, ids := seedAssessmentWithKeys(t, repo, user.ID, []string{"a", "b"})

	svc, _ := newTestScoring(repo)

	result, err := svc.Submit(context.Background(), user.ID, &SubmitAssessmentRequest{
		AssessmentID: assessment.ID,
		Answers: map[string]string{
			itoa(ids[0]): "a",
			"99999":      "b",
			"not-an-id":  "c",
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("score = %d, want 1", result.Score)
	}
}

func TestResubmitRecomputesTotalFromRecordedChoices(t *testing.T) {
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")
	assessment, ids := seedAssessmentWithKeys(t, repo, user.ID, []string{"a", "b", "c"})

	svc, _ := newTestScoring(repo)
	ctx := context.Background()

	first, err := svc.Submit(ctx, user.ID, &SubmitAssessmentRequest{
		AssessmentID: assessment.ID,
		Answers:      map[string]string{itoa(ids[0]): "a", itoa(ids[1]): "x"},
	})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if first.Score != 1 {
		t.Fatalf("first score = %d, want 1", first.Score)
	}

	// The second submission touches only q2, but the total is recomputed
	// over every recorded choice, so q1's earlier answer still counts.
	second, err := svc.Submit(ctx, user.ID, &SubmitAssessmentRequest{
		AssessmentID: assessment.ID,
		Answers:      map[string]string{itoa(ids[1]): "b"},
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if second.Score != 2 {
		t.Errorf("second score = %d, want 2", second.Score)
	}
}

func TestSubmitGuards(t *testing.T) {
	repo := newFakeRepository()
	owner := repo.addUser("maya", "maya@example.com")
	other := repo.addUser("ravi", "ravi@example.com")
	assessment, _ := seedAssessmentWithKeys(t, repo, owner.ID, []string{"a"})

	svc, _ := newTestScoring(repo)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, owner.ID, &SubmitAssessmentRequest{AssessmentID: 999, Answers: map[string]string{}}); !errors.Is(err, ErrAssessmentNotFound) {
		t.Errorf("missing assessment error = %v, want ErrAssessmentNotFound", err)
	}
	if _, err := svc.Submit(ctx, other.ID, &SubmitAssessmentRequest{AssessmentID: assessment.ID, Answers: map[string]string{}}); !errors.Is(err, ErrAssessmentAccessDenied) {
		t.Errorf("foreign submit error = %v, want ErrAssessmentAccessDenied", err)
	}
}

func TestCountCorrect(t *testing.T) {
	answered := func(choice string) *string { return &choice }

	questions := []models.Question{
		{CorrectChoice: "a", UserChoice: answered("a")},
		{CorrectChoice: "b", UserChoice: answered("c")},
		{CorrectChoice: "c", UserChoice: nil},
		{CorrectChoice: "d", UserChoice: answered("d")},
	}
	if got := countCorrect(questions); got != 2 {
		t.Errorf("countCorrect = %d, want 2", got)
	}
	if got := countCorrect(nil); got != 0 {
		t.Errorf("countCorrect(nil) = %d, want 0", got)
	}
}

func TestMatchAnswers(t *testing.T) {
	questions := []models.Question{{ID: 1}, {ID: 2}}

	matched := matchAnswers(questions, map[string]string{
		"1":    "a",
		"2":    "b",
		"3":    "c",
		"junk": "d",
	})
	if len(matched) != 2 {
		t.Fatalf("matched %d answers, want 2", len(matched))
	}
	if matched[1] != "a" || matched[2] != "b" {
		t.Errorf("matched = %v, want {1:a 2:b}", matched)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
