package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/accessgenius/assessment-service/internal/cache"
	"github.com/accessgenius/assessment-service/internal/models"
)

func newTestAnalytics(repo *fakeRepository, now time.Time) *analyticsService {
	return &analyticsService{
		repo:   repo,
		logger: testLogger(),
		cache:  cache.NewCacheManager(nil),
		loc:    time.UTC,
		now:    func() time.Time { return now },
	}
}

func scored(repo *fakeRepository, userID uint, subject, topic string, score int, createdAt time.Time) *models.Assessment {
	s := score
	return repo.addAssessment(models.Assessment{
		UserID:     userID,
		Subject:    subject,
		Topic:      topic,
		Difficulty: models.DifficultyMedium,
		Status:     models.StatusCompleted,
		Score:      &s,
		CreatedAt:  createdAt,
		DueDate:    createdAt.AddDate(0, 0, 3),
	})
}

func TestMonthWindow(t *testing.T) {
	from, to := monthWindow(2025, time.March, time.UTC)

	if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	if !to.Before(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v, must precede April 1st", to)
	}
	if !to.After(time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("to = %v, must cover the last second of March", to)
	}
}

func TestRelativeLabel(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		want      string
	}{
		{"minutes ago", now.Add(-30 * time.Minute), "1 hour ago"},
		{"five hours ago", now.Add(-5 * time.Hour), "5 hours ago"},
		{"two days ago", now.AddDate(0, 0, -2), "13 Mar 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeLabel(tt.createdAt, now); got != tt.want {
				t.Errorf("relativeLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScorePercentage(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{30, 100},
		{15, 50},
		{0, 0},
		{20, 66.67},
	}
	for _, tt := range tests {
		if got := scorePercentage(tt.score); got != tt.want {
			t.Errorf("scorePercentage(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestComputeTotals(t *testing.T) {
	mk := func(score int) models.Assessment {
		s := score
		return models.Assessment{Score: &s}
	}

	current := []models.Assessment{mk(10), mk(20)}
	previous := []models.Assessment{mk(30)}

	// 10 days elapsed this month, 31 days in the previous month.
	got := computeTotals(current, previous, 10, 31)

	if got.Current.Count != 2 || got.Previous.Count != 1 {
		t.Errorf("counts = %d/%d, want 2/1", got.Current.Count, got.Previous.Count)
	}
	if got.Current.AverageScore != 15 {
		t.Errorf("current average = %v, want 15", got.Current.AverageScore)
	}
	if got.AverageDelta != -15 {
		t.Errorf("average delta = %v, want -15", got.AverageDelta)
	}

	// (2/(10*3) - 1/(31*3)) * 100 = 5.59 after rounding.
	if got.PercentageDelta != 5.59 {
		t.Errorf("percentage delta = %v, want 5.59", got.PercentageDelta)
	}
}

func TestSubjectAveragesExample(t *testing.T) {
	mk := func(subject string, score int) models.Assessment {
		s := score
		return models.Assessment{Subject: subject, Score: &s}
	}

	rows := subjectAverages([]models.Assessment{
		mk("Math", 80),
		mk("Math", 90),
		mk("Math", 70),
	}, time.March)

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Month != "Mar" || rows[0].Subject != "Math" || rows[0].AverageScore != 80 {
		t.Errorf("row = %+v, want {Mar Math 80}", rows[0])
	}
}

func TestMonthlyRollupSkipsEmptyMonths(t *testing.T) {
	mk := func(month time.Month, score int) models.Assessment {
		s := score
		return models.Assessment{
			Score:     &s,
			CreatedAt: time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	rows := monthlyRollup([]models.Assessment{
		mk(time.January, 10),
		mk(time.January, 20),
		mk(time.June, 30),
	}, time.UTC)

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Month != "Jan" || rows[0].AverageScore != 15 || rows[0].TotalAssessments != 2 {
		t.Errorf("first row = %+v, want {Jan 15 2}", rows[0])
	}
	if rows[1].Month != "Jun" || rows[1].TotalAssessments != 1 {
		t.Errorf("second row = %+v, want {Jun 30 1}", rows[1])
	}
}

func TestAnalysisGuards(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")
	svc := newTestAnalytics(repo, now)
	ctx := context.Background()

	// No assessments at all.
	if _, err := svc.Analysis(ctx, user.ID, 2025, time.March); !errors.Is(err, ErrNoAssessmentData) {
		t.Errorf("empty store error = %v, want ErrNoAssessmentData", err)
	}

	// Data exists, but none in the requested year.
	scored(repo, user.ID, "Math", "Algebra", 20, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if _, err := svc.Analysis(ctx, user.ID, 2025, time.March); !errors.Is(err, ErrNoAssessmentData) {
		t.Errorf("wrong year error = %v, want ErrNoAssessmentData", err)
	}
}

func TestAnalysisReturnsMonthRowsOrderedByTopic(t *testing.T) {
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")

	scored(repo, user.ID, "Math", "Calculus", 25, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	scored(repo, user.ID, "Math", "Algebra", 20, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	// Outside the requested month, must be absent.
	scored(repo, user.ID, "Math", "Geometry", 10, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC))
	// Null score renders as 0.
	repo.addAssessment(models.Assessment{
		UserID:     user.ID,
		Subject:    "Physics",
		Topic:      "Waves",
		Difficulty: models.DifficultyHard,
		Status:     models.StatusPending,
		CreatedAt:  time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	svc := newTestAnalytics(repo, now)

	rows, err := svc.Analysis(context.Background(), user.ID, 2025, time.March)
	if err != nil {
		t.Fatalf("Analysis: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Topic != "Algebra" || rows[1].Topic != "Calculus" || rows[2].Topic != "Waves" {
		t.Errorf("topic order = %q,%q,%q, want Algebra,Calculus,Waves", rows[0].Topic, rows[1].Topic, rows[2].Topic)
	}
	if rows[2].Score != 0 {
		t.Errorf("null score rendered as %d, want 0", rows[2].Score)
	}
	if rows[0].Date != "2025-03-05" {
		t.Errorf("date = %q, want 2025-03-05", rows[0].Date)
	}
}

func TestRecentActivityWindowAndDescriptions(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")

	scored(repo, user.ID, "Math", "Algebra", 15, now.AddDate(0, 0, -2))
	repo.addAssessment(models.Assessment{
		UserID:    user.ID,
		Subject:   "Physics",
		Topic:     "Waves",
		Status:    models.StatusPending,
		CreatedAt: now.Add(-3 * time.Hour),
		DueDate:   now.AddDate(0, 0, 2),
	})
	// Older than seven days, must be absent.
	scored(repo, user.ID, "History", "WW2", 10, now.AddDate(0, 0, -10))

	svc := newTestAnalytics(repo, now)

	items, err := svc.RecentActivity(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// Newest first.
	if items[0].Subject != "Physics" {
		t.Errorf("first item subject = %q, want Physics", items[0].Subject)
	}
	if items[0].When != "3 hours ago" {
		t.Errorf("when = %q, want '3 hours ago'", items[0].When)
	}
	if items[0].Description != "2 days remaining" {
		t.Errorf("pending description = %q, want '2 days remaining'", items[0].Description)
	}
	if items[1].Description != "Completed with 50.00%" {
		t.Errorf("completed description = %q, want 'Completed with 50.00%%'", items[1].Description)
	}
}

func TestTotalAssessment(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")

	scored(repo, user.ID, "Math", "Algebra", 10, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	scored(repo, user.ID, "Math", "Calculus", 20, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	scored(repo, user.ID, "Math", "Geometry", 30, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))

	svc := newTestAnalytics(repo, now)

	result, err := svc.TotalAssessment(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("TotalAssessment: %v", err)
	}
	if result.Current.Count != 2 || result.Previous.Count != 1 {
		t.Errorf("counts = %d/%d, want 2/1", result.Current.Count, result.Previous.Count)
	}
	if result.Current.AverageScore != 15 || result.Previous.AverageScore != 30 {
		t.Errorf("averages = %v/%v, want 15/30", result.Current.AverageScore, result.Previous.AverageScore)
	}
	if result.AverageDelta != -15 {
		t.Errorf("average delta = %v, want -15", result.AverageDelta)
	}

	// (2/(10*3) - 1/(28*3)) * 100 = 5.48 after rounding.
	if result.PercentageDelta != 5.48 {
		t.Errorf("percentage delta = %v, want 5.48", result.PercentageDelta)
	}
}

func TestPerformanceAnalysis(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepository()
	user := repo.addUser("maya", "maya@example.com")

	scored(repo, user.ID, "Math", "Algebra", 10, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	scored(repo, user.ID, "Math", "Calculus", 20, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	scored(repo, user.ID, "Physics", "Waves", 30, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))

	svc := newTestAnalytics(repo, now)

	rows, err := svc.PerformanceAnalysis(context.Background(), user.ID, 2025)
	if err != nil {
		t.Fatalf("PerformanceAnalysis: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Month != "Jan" || rows[0].AverageScore != 15 || rows[0].TotalAssessments != 2 {
		t.Errorf("first row = %+v, want {Jan 15 2}", rows[0])
	}
	if rows[1].Month != "Jun" || rows[1].AverageScore != 30 {
		t.Errorf("second row = %+v, want {Jun 30 1}", rows[1])
	}
}
