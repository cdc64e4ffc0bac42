package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
)

type managersAggregationRepository interface {
	ListManagersWithManagees(ctx context.Context, filter models.AggregationFilter) ([]models.ManagerWithManagees, error)
}

// AggregationService computes the per-manager feedback rollups backing the
// dashboard.
type AggregationService struct {
	repo     managersAggregationRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAggregationService constructs an AggregationService.
func NewAggregationService(repo managersAggregationRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregationService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Managers returns one aggregation per matching manager, each with its sorted
// managee breakdown, sorted and paginated. The second return value reports a
// cache hit.
func (s *AggregationService) Managers(ctx context.Context, filter models.AggregationFilter, page models.PageRequest, sortKey models.AggregationSort) (*models.PaginatedManagersAggregation, bool, error) {
	page = page.Normalize()

	cacheKey := managersCacheKey(filter, page, sortKey)
	if s.cache.Enabled() {
		var cached models.PaginatedManagersAggregation
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	managers, err := s.repo.ListManagersWithManagees(ctx, filter)
	if err != nil {
		return nil, false, err
	}

	var interval *models.DateInterval
	if filter.Start != nil && filter.End != nil {
		interval = &models.DateInterval{Start: *filter.Start, End: *filter.End}
	}

	cmp := comparatorFor(sortKey)
	results := make([]models.ManagerAggregation, 0, len(managers))
	for _, manager := range managers {
		managees := AggregateManagees(manager.Managees, interval)
		sort.SliceStable(managees, func(i, j int) bool {
			return cmp(manageeEntry(managees[i]), manageeEntry(managees[j])) < 0
		})
		results = append(results, models.ManagerAggregation{
			ID:              manager.ID,
			Name:            manager.Name,
			PictureURL:      manager.PictureURL,
			AggregationData: AggregateManager(managees),
			Managees:        managees,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return cmp(managerEntry(results[i]), managerEntry(results[j])) < 0
	})

	payload := paginateManagers(results, page)
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
			s.logger.Warn("managers aggregation cache write failed", zap.Error(err))
		}
	}
	return payload, false, nil
}

// AggregateManagees folds raw feedback grades into one average, count and
// most recent date per managee. A nil interval keeps every feedback; the
// interval end is pushed to the last millisecond of its day.
func AggregateManagees(managees []models.ManageeWithFeedbacks, interval *models.DateInterval) []models.ManageeAggregation {
	var bounds *models.DateInterval
	if interval != nil {
		bounds = &models.DateInterval{Start: interval.Start, End: endOfDay(interval.End)}
	}

	result := make([]models.ManageeAggregation, 0, len(managees))
	for _, managee := range managees {
		agg := models.ManageeAggregation{
			ID:         managee.ID,
			Name:       managee.Name,
			PictureURL: managee.PictureURL,
		}
		for _, fb := range managee.Feedbacks {
			if bounds != nil && !bounds.Contains(fb.Date) {
				continue
			}
			if agg.Average == nil {
				grade := fb.Grade
				agg.Average = &grade
			} else {
				avg := (*agg.Average*float64(agg.Count) + fb.Grade) / float64(agg.Count+1)
				agg.Average = &avg
			}
			if agg.Date == nil || fb.Date.After(*agg.Date) {
				date := fb.Date
				agg.Date = &date
			}
			agg.Count++
		}
		result = append(result, agg)
	}
	return result
}

// AggregateManager rolls managee aggregates up into a single team figure.
// The average weights each managee by its feedback count, the date is the
// most recent one and the count sums every feedback. Managees without
// feedback are skipped entirely; a managee carrying a count but no average
// still contributes to the count and date.
func AggregateManager(managees []models.ManageeAggregation) models.AggregationData {
	var rollup models.AggregationData
	averageCount := 0
	for _, managee := range managees {
		if managee.Count == 0 {
			continue
		}
		if rollup.Count == 0 {
			rollup = models.AggregationData{Date: managee.Date, Count: managee.Count, Average: managee.Average}
			continue
		}
		if managee.Average != nil && rollup.Average != nil {
			if averageCount == 0 {
				averageCount = rollup.Count + managee.Count
			} else {
				averageCount += managee.Count
			}
			weighted := (*rollup.Average*float64(averageCount-managee.Count) + *managee.Average*float64(managee.Count)) / float64(averageCount)
			rollup.Average = &weighted
		}
		if managee.Date != nil && rollup.Date != nil && managee.Date.After(*rollup.Date) {
			rollup.Date = managee.Date
		}
		rollup.Count += managee.Count
	}
	return rollup
}

type aggregationEntry struct {
	name string
	data models.AggregationData
}

func manageeEntry(m models.ManageeAggregation) aggregationEntry {
	return aggregationEntry{name: m.Name, data: m.AggregationData}
}

func managerEntry(m models.ManagerAggregation) aggregationEntry {
	return aggregationEntry{name: m.Name, data: m.AggregationData}
}

// Descending variants swap operands wholesale, so missing averages and dates
// lead in ascending order and trail in descending order.
var aggregationComparators = map[models.AggregationSort]func(a, b aggregationEntry) int{
	models.AggregationSortNameAsc:     compareNames,
	models.AggregationSortAverageAsc:  compareAverages,
	models.AggregationSortCountAsc:    compareCounts,
	models.AggregationSortDateAsc:     compareDates,
	models.AggregationSortNameDesc:    inverted(compareNames),
	models.AggregationSortAverageDesc: inverted(compareAverages),
	models.AggregationSortCountDesc:   inverted(compareCounts),
	models.AggregationSortDateDesc:    inverted(compareDates),
}

func comparatorFor(key models.AggregationSort) func(a, b aggregationEntry) int {
	if cmp, ok := aggregationComparators[key]; ok {
		return cmp
	}
	return compareNames
}

func inverted(cmp func(a, b aggregationEntry) int) func(a, b aggregationEntry) int {
	return func(a, b aggregationEntry) int { return cmp(b, a) }
}

func compareNames(a, b aggregationEntry) int {
	return strings.Compare(strings.ToUpper(a.name), strings.ToUpper(b.name))
}

func compareAverages(a, b aggregationEntry) int {
	n1, n2 := a.data.Average, b.data.Average
	switch {
	case n1 == nil && n2 == nil:
		return 0
	case n1 == nil:
		return -1
	case n2 == nil:
		return 1
	case *n1 < *n2:
		return -1
	case *n1 > *n2:
		return 1
	}
	return 0
}

func compareCounts(a, b aggregationEntry) int {
	switch {
	case a.data.Count < b.data.Count:
		return -1
	case a.data.Count > b.data.Count:
		return 1
	}
	return 0
}

func compareDates(a, b aggregationEntry) int {
	d1, d2 := truncateToDay(a.data.Date), truncateToDay(b.data.Date)
	switch {
	case d1 == nil && d2 == nil:
		return 0
	case d1 == nil:
		return -1
	case d2 == nil:
		return 1
	case d1.Before(*d2):
		return -1
	case d1.After(*d2):
		return 1
	}
	return 0
}

func truncateToDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &day
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// paginateManagers slices the results only when they overflow a single page,
// so a list that fits is returned whole whatever the requested page.
func paginateManagers(results []models.ManagerAggregation, page models.PageRequest) *models.PaginatedManagersAggregation {
	totalCount := len(results)
	if totalCount > page.PerPage {
		start := (page.Page - 1) * page.PerPage
		if start > totalCount {
			start = totalCount
		}
		end := start + page.PerPage
		if end > totalCount {
			end = totalCount
		}
		results = results[start:end]
	}
	return &models.PaginatedManagersAggregation{
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalCount: totalCount,
		Results:    results,
	}
}

func managersCacheKey(filter models.AggregationFilter, page models.PageRequest, sortKey models.AggregationSort) string {
	start, end := "", ""
	if filter.Start != nil {
		start = filter.Start.Format("2006-01-02")
	}
	if filter.End != nil {
		end = filter.End.Format("2006-01-02")
	}
	return fmt.Sprintf("aggregation:managers:q=%s:s=%s:m=%s:%s:%s:p=%d:%d:o=%s",
		filter.Query,
		strings.Join(filter.Startups, ","),
		strings.Join(filter.Managers, ","),
		start, end,
		page.Page, page.PerPage,
		sortKey,
	)
}
