package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type oldestFeedbackProvider interface {
	OldestFeedbackDate(ctx context.Context, filter models.OldestFeedbackFilter) (*time.Time, error)
}

// PeriodService builds the semester and full-year period options offered by
// the dashboard filters.
type PeriodService struct {
	feedbacks oldestFeedbackProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewPeriodService constructs a PeriodService.
func NewPeriodService(feedbacks oldestFeedbackProvider, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{feedbacks: feedbacks, logger: logger, now: time.Now}
}

// PeriodOptionsQuery scopes and seeds the period filter options.
type PeriodOptionsQuery struct {
	Manager string
	Until   *time.Time
	Default string
}

// FilterOptions lists the period options covering every recorded feedback.
// The range starts at the oldest feedback, optionally restricted to the
// managees of one manager, and falls back to the current instant when no
// feedback exists. A known Default key moves the selection onto that option.
func (s *PeriodService) FilterOptions(ctx context.Context, query PeriodOptionsQuery) ([]models.PeriodOption, error) {
	oldest, err := s.feedbacks.OldestFeedbackDate(ctx, models.OldestFeedbackFilter{Manager: query.Manager})
	if err != nil {
		return nil, err
	}

	from := s.now().UTC()
	if oldest != nil {
		from = *oldest
	}
	until := s.now().UTC()
	if query.Until != nil {
		until = *query.Until
	}

	options, err := BuildPeriodOptions(from, until)
	if err != nil {
		return nil, err
	}
	if query.Default != "" {
		applyDefaultPeriod(options, query.Default)
	}
	return options, nil
}

// SemesterIntervals returns both semesters of a year and the full span. S1
// runs from February 1st to July 31st, S2 from August 1st to January 31st of
// the next year, all UTC.
func SemesterIntervals(year int) (s1, s2, full models.DateInterval) {
	s1 = models.DateInterval{
		Start: time.Date(year, time.February, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.July, 31, 0, 0, 0, 0, time.UTC),
	}
	s2 = models.DateInterval{
		Start: time.Date(year, time.August, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
	full = models.DateInterval{Start: s1.Start, End: s2.End}
	return s1, s2, full
}

// FindSemesterInterval maps a date to the semester containing it. January
// belongs to the previous year's second semester.
func FindSemesterInterval(date time.Time) models.DateInterval {
	year := date.Year()
	if date.Month() == time.January {
		year--
	}
	s1, s2, _ := SemesterIntervals(year)
	if date.Before(s2.Start) {
		return s1
	}
	return s2
}

// BuildPeriodOptions emits one option per semester and year between from and
// until, most recent first. The most recent period is selected. A year whose
// second semester has not started yet only gets its S1 option, and the oldest
// year drops S1 when from falls in its second semester.
func BuildPeriodOptions(from, until time.Time) ([]models.PeriodOption, error) {
	if until.IsZero() {
		until = time.Now().UTC()
	}
	if from.After(until) {
		return nil, appErrors.ErrPeriodBounds
	}

	startYear := from.Year()
	if from.Month() == time.January {
		startYear--
	}
	endYear := until.Year()
	if until.Month() == time.January {
		endYear--
	}

	options := make([]models.PeriodOption, 0, 3*(endYear-startYear+1))
	for year := endYear; year >= startYear; year-- {
		s1, s2, full := SemesterIntervals(year)
		switch {
		case year == endYear && until.Before(s2.Start):
			options = append(options, semesterOption(1, year, s1, true))
		case year == startYear && !from.Before(s2.Start):
			options = append(options,
				yearOption(year, full),
				semesterOption(2, year, s2, year == endYear),
			)
		default:
			options = append(options,
				yearOption(year, full),
				semesterOption(2, year, s2, year == endYear),
				semesterOption(1, year, s1, false),
			)
		}
	}
	return options, nil
}

func yearOption(year int, r models.DateInterval) models.PeriodOption {
	return models.PeriodOption{
		Key:   fmt.Sprintf("year_%d", year),
		Label: fmt.Sprintf("Année %d", year),
		Range: r,
	}
}

func semesterOption(semester, year int, r models.DateInterval, selected bool) models.PeriodOption {
	return models.PeriodOption{
		Key:      fmt.Sprintf("s%d_%d", semester, year),
		Label:    fmt.Sprintf("S%d %d", semester, year),
		Range:    r,
		Selected: selected,
	}
}

func applyDefaultPeriod(options []models.PeriodOption, key string) {
	for _, opt := range options {
		if opt.Key == key {
			for i := range options {
				options[i].Selected = options[i].Key == key
			}
			return
		}
	}
}
