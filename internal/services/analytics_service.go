package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/cache"
	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

// maxAssessmentScore is the fixed maximum used to express a score as a
// percentage in the activity feed.
const maxAssessmentScore = 30

// expectedDailyCadence models how many assessments a user is expected to
// take per day, used by the totals delta.
const expectedDailyCadence = 3

type analyticsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	cache  *cache.CacheManager
	loc    *time.Location
	now    func() time.Time
}

func NewAnalyticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager, loc *time.Location) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		db:     db,
		logger: logger,
		cache:  cacheManager,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *analyticsService) RecentActivity(ctx context.Context, userID uint) ([]RecentActivityItem, error) {
	cacheKey := fmt.Sprintf("user:%d:recent", userID)
	var items []RecentActivityItem

	err := s.cache.Analytics.CacheOrExecute(ctx, cacheKey, &items, cache.AnalyticsCacheConfig.TTL, func() (interface{}, error) {
		now := s.now().In(s.loc)
		assessments, err := s.repo.Analytics().FetchWindow(ctx, nil, userID, now.AddDate(0, 0, -7), now)
		if err != nil {
			return nil, err
		}

		result := make([]RecentActivityItem, len(assessments))
		for i, a := range assessments {
			result[i] = RecentActivityItem{
				AssessmentID: a.ID,
				Subject:      a.Subject,
				Topic:        a.Topic,
				Status:       a.Status,
				When:         relativeLabel(a.CreatedAt.In(s.loc), now),
				Description:  activityDescription(&a, now),
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *analyticsService) TotalAssessment(ctx context.Context, userID uint) (*TotalAssessmentResult, error) {
	cacheKey := fmt.Sprintf("user:%d:total", userID)
	var result TotalAssessmentResult

	err := s.cache.Analytics.CacheOrExecute(ctx, cacheKey, &result, cache.AnalyticsCacheConfig.TTL, func() (interface{}, error) {
		now := s.now().In(s.loc)
		curStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
		prevStart, prevEnd := monthWindow(curStart.AddDate(0, -1, 0).Year(), curStart.AddDate(0, -1, 0).Month(), s.loc)

		current, err := s.repo.Analytics().FetchWindow(ctx, nil, userID, curStart, now)
		if err != nil {
			return nil, err
		}
		previous, err := s.repo.Analytics().FetchWindow(ctx, nil, userID, prevStart, prevEnd)
		if err != nil {
			return nil, err
		}

		return computeTotals(current, previous, now.Day(), prevEnd.Day()), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *analyticsService) Analysis(ctx context.Context, userID uint, year int, month time.Month) ([]TopicAnalysisRow, error) {
	if err := s.guardYear(ctx, userID, year); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("user:%d:analysis:%d-%02d", userID, year, month)
	var rows []TopicAnalysisRow

	err := s.cache.Analytics.CacheOrExecute(ctx, cacheKey, &rows, cache.AnalyticsCacheConfig.TTL, func() (interface{}, error) {
		from, to := monthWindow(year, month, s.loc)
		assessments, err := s.repo.Analytics().FetchWindow(ctx, nil, userID, from, to)
		if err != nil {
			return nil, err
		}

		result := make([]TopicAnalysisRow, len(assessments))
		for i, a := range assessments {
			result[i] = TopicAnalysisRow{
				Topic:      a.Topic,
				Date:       a.CreatedAt.In(s.loc).Format("2006-01-02"),
				Score:      a.ScoreValue(),
				Difficulty: a.Difficulty,
			}
		}
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Topic < result[j].Topic
		})
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *analyticsService) SubjectAnalysis(ctx context.Context, userID uint, year int, month time.Month) ([]SubjectAnalysisRow, error) {
	if err := s.guardYear(ctx, userID, year); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("user:%d:subjects:%d-%02d", userID, year, month)
	var rows []SubjectAnalysisRow

	err := s.cache.Analytics.CacheOrExecute(ctx, cacheKey, &rows, cache.AnalyticsCacheConfig.TTL, func() (interface{}, error) {
		from, to := monthWindow(year, month, s.loc)
		assessments, err := s.repo.Analytics().FetchWindow(ctx, nil, userID, from, to)
		if err != nil {
			return nil, err
		}
		return subjectAverages(assessments, month), nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *analyticsService) PerformanceAnalysis(ctx context.Context, userID uint, year int) ([]MonthlyPerformanceRow, error) {
	if err := s.guardYear(ctx, userID, year); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("user:%d:performance:%d", userID, year)
	var rows []MonthlyPerformanceRow

	err := s.cache.Analytics.CacheOrExecute(ctx, cacheKey, &rows, cache.AnalyticsCacheConfig.TTL, func() (interface{}, error) {
		from, to := yearWindow(year, s.loc)
		assessments, err := s.repo.Analytics().FetchWindow(ctx, nil, userID, from, to)
		if err != nil {
			return nil, err
		}
		return monthlyRollup(assessments, s.loc), nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// guardYear enforces the shared analysis preconditions: the user must own
// at least one assessment, and at least one inside the requested year.
func (s *analyticsService) guardYear(ctx context.Context, userID uint, year int) error {
	total, err := s.repo.Analytics().CountByUser(ctx, nil, userID)
	if err != nil {
		return err
	}
	if total == 0 {
		return ErrNoAssessmentData
	}

	from, to := yearWindow(year, s.loc)
	inYear, err := s.repo.Analytics().CountInWindow(ctx, nil, userID, from, to)
	if err != nil {
		return err
	}
	if inYear == 0 {
		return ErrNoAssessmentData
	}
	return nil
}

// ===== PURE ROLLUP HELPERS =====

func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// monthWindow returns the inclusive bounds of one calendar month.
func monthWindow(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// yearWindow returns the inclusive bounds of one calendar year.
func yearWindow(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return start, end
}

func monthLabel(month time.Month) string {
	return month.String()[:3]
}

// relativeLabel renders hours-ago phrasing inside the first day and an
// absolute date after that.
func relativeLabel(createdAt, now time.Time) string {
	age := now.Sub(createdAt)
	if age < 24*time.Hour {
		hours := int(age.Hours())
		if hours <= 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	return createdAt.Format("02 Jan 2006")
}

// scorePercentage expresses a raw score against the fixed maximum.
func scorePercentage(score int) float64 {
	return roundFloat(float64(score)/maxAssessmentScore*100, 2)
}

func activityDescription(a *models.Assessment, now time.Time) string {
	switch a.Status {
	case models.StatusCompleted:
		return fmt.Sprintf("Completed with %.2f%%", scorePercentage(a.ScoreValue()))
	case models.StatusPending:
		days := int(a.DueDate.Sub(now).Hours() / 24)
		if days <= 0 {
			return "Due today"
		}
		if days == 1 {
			return "1 day remaining"
		}
		return fmt.Sprintf("%d days remaining", days)
	case models.StatusExpired:
		return "Due date reached"
	default:
		return "Closed"
	}
}

func averageScore(assessments []models.Assessment) float64 {
	if len(assessments) == 0 {
		return 0
	}
	sum := 0
	for _, a := range assessments {
		sum += a.ScoreValue()
	}
	return float64(sum) / float64(len(assessments))
}

// computeTotals compares the current month against the previous one. The
// cadence delta normalizes both counts by the days available in each window
// times the expected daily cadence.
func computeTotals(current, previous []models.Assessment, daysElapsed, daysInPrev int) *TotalAssessmentResult {
	curAvg := roundFloat(averageScore(current), 2)
	prevAvg := roundFloat(averageScore(previous), 2)

	curRate := float64(len(current)) / (float64(daysElapsed) * expectedDailyCadence)
	prevRate := float64(len(previous)) / (float64(daysInPrev) * expectedDailyCadence)

	return &TotalAssessmentResult{
		Current:         MonthTotals{Count: int64(len(current)), AverageScore: curAvg},
		Previous:        MonthTotals{Count: int64(len(previous)), AverageScore: prevAvg},
		PercentageDelta: roundFloat((curRate-prevRate)*100, 2),
		AverageDelta:    roundFloat(curAvg-prevAvg, 2),
	}
}

// subjectAverages groups one month's assessments by subject. Subjects with
// no rows are absent, never synthetic zeros.
func subjectAverages(assessments []models.Assessment, month time.Month) []SubjectAnalysisRow {
	bySubject := make(map[string][]models.Assessment)
	for _, a := range assessments {
		bySubject[a.Subject] = append(bySubject[a.Subject], a)
	}

	rows := make([]SubjectAnalysisRow, 0, len(bySubject))
	for subject, group := range bySubject {
		rows = append(rows, SubjectAnalysisRow{
			Month:        monthLabel(month),
			Subject:      subject,
			AverageScore: roundFloat(averageScore(group), 2),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Subject < rows[j].Subject })
	return rows
}

// monthlyRollup buckets a year's assessments per calendar month. Months with
// no rows are absent.
func monthlyRollup(assessments []models.Assessment, loc *time.Location) []MonthlyPerformanceRow {
	byMonth := make(map[time.Month][]models.Assessment)
	for _, a := range assessments {
		m := a.CreatedAt.In(loc).Month()
		byMonth[m] = append(byMonth[m], a)
	}

	rows := make([]MonthlyPerformanceRow, 0, len(byMonth))
	for m := time.January; m <= time.December; m++ {
		group, ok := byMonth[m]
		if !ok {
			continue
		}
		rows = append(rows, MonthlyPerformanceRow{
			Month:            monthLabel(m),
			AverageScore:     roundFloat(averageScore(group), 2),
			TotalAssessments: int64(len(group)),
		})
	}
	return rows
}
