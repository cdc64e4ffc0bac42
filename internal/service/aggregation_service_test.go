package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
)

type fakeManagersRepo struct {
	managers   []models.ManagerWithManagees
	err        error
	lastFilter models.AggregationFilter
}

func (f *fakeManagersRepo) ListManagersWithManagees(_ context.Context, filter models.AggregationFilter) ([]models.ManagerWithManagees, error) {
	f.lastFilter = filter
	return f.managers, f.err
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, zap.NewNop(), false)
}

func managee(id, name string, feedbacks ...models.FeedbackGrade) models.ManageeWithFeedbacks {
	return models.ManageeWithFeedbacks{ID: id, Name: name, Feedbacks: feedbacks}
}

func grade(date time.Time, value float64) models.FeedbackGrade {
	return models.FeedbackGrade{Date: date, Grade: value}
}

func TestAggregateManagees(t *testing.T) {
	d1 := utcDate(2023, time.March, 10)
	d2 := utcDate(2023, time.April, 2)

	result := AggregateManagees([]models.ManageeWithFeedbacks{
		managee("a@x.co", "Alice", grade(d1, 8), grade(d2, 9)),
		managee("b@x.co", "Bob"),
	}, nil)

	require.Len(t, result, 2)
	require.NotNil(t, result[0].Average)
	assert.Equal(t, 8.5, *result[0].Average)
	assert.Equal(t, 2, result[0].Count)
	require.NotNil(t, result[0].Date)
	assert.Equal(t, d2, *result[0].Date)

	assert.Nil(t, result[1].Average)
	assert.Equal(t, 0, result[1].Count)
	assert.Nil(t, result[1].Date)
}

func TestAggregateManageesIntervalIncludesWholeLastDay(t *testing.T) {
	interval := &models.DateInterval{
		Start: utcDate(2023, time.February, 1),
		End:   utcDate(2023, time.July, 31),
	}
	evening := time.Date(2023, time.July, 31, 18, 30, 0, 0, time.UTC)

	result := AggregateManagees([]models.ManageeWithFeedbacks{
		managee("a@x.co", "Alice",
			grade(evening, 7),
			grade(utcDate(2023, time.January, 20), 2),
			grade(utcDate(2023, time.August, 1), 3),
		),
	}, interval)

	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].Count)
	require.NotNil(t, result[0].Average)
	assert.Equal(t, 7.0, *result[0].Average)
}

func TestAggregateManagerWeightsByCount(t *testing.T) {
	avgA, avgB := 10.0, 9.0
	d := utcDate(2023, time.March, 1)

	rollup := AggregateManager([]models.ManageeAggregation{
		{AggregationData: models.AggregationData{Average: &avgA, Count: 4, Date: &d}},
		{AggregationData: models.AggregationData{Average: &avgB, Count: 4, Date: &d}},
	})

	require.NotNil(t, rollup.Average)
	assert.Equal(t, 9.5, *rollup.Average)
	assert.Equal(t, 8, rollup.Count)
}

func TestAggregateManagerThreeTeams(t *testing.T) {
	a, b, c := 10.0, 8.0, 6.0

	rollup := AggregateManager([]models.ManageeAggregation{
		{AggregationData: models.AggregationData{Average: &a, Count: 2}},
		{AggregationData: models.AggregationData{Average: &b, Count: 2}},
		{AggregationData: models.AggregationData{Average: &c, Count: 2}},
	})

	require.NotNil(t, rollup.Average)
	assert.InDelta(t, 8.0, *rollup.Average, 1e-9)
	assert.Equal(t, 6, rollup.Count)
}

func TestAggregateManagerSkipsManageesWithoutFeedback(t *testing.T) {
	avg := 7.0
	d := utcDate(2023, time.May, 1)

	rollup := AggregateManager([]models.ManageeAggregation{
		{AggregationData: models.AggregationData{}},
		{AggregationData: models.AggregationData{Average: &avg, Count: 3, Date: &d}},
		{AggregationData: models.AggregationData{}},
	})

	require.NotNil(t, rollup.Average)
	assert.Equal(t, 7.0, *rollup.Average)
	assert.Equal(t, 3, rollup.Count)
	require.NotNil(t, rollup.Date)
	assert.Equal(t, d, *rollup.Date)
}

func TestAggregateManagerDateOnlyReplacedWhenBothKnown(t *testing.T) {
	avg := 5.0
	newer := utcDate(2023, time.June, 1)

	// The seed carries no date, so later dates never replace it.
	rollup := AggregateManager([]models.ManageeAggregation{
		{AggregationData: models.AggregationData{Average: &avg, Count: 1}},
		{AggregationData: models.AggregationData{Average: &avg, Count: 1, Date: &newer}},
	})

	assert.Nil(t, rollup.Date)
	assert.Equal(t, 2, rollup.Count)
}

func TestAggregationComparatorsNullPlacement(t *testing.T) {
	avg := 6.0
	withAvg := aggregationEntry{name: "A", data: models.AggregationData{Average: &avg}}
	withoutAvg := aggregationEntry{name: "B"}

	asc := aggregationComparators[models.AggregationSortAverageAsc]
	desc := aggregationComparators[models.AggregationSortAverageDesc]

	// Missing averages lead ascending and trail descending.
	assert.Positive(t, asc(withAvg, withoutAvg))
	assert.Negative(t, desc(withAvg, withoutAvg))
}

func TestAggregationComparatorNamesIgnoreCase(t *testing.T) {
	cmp := aggregationComparators[models.AggregationSortNameAsc]

	assert.Negative(t, cmp(aggregationEntry{name: "alice"}, aggregationEntry{name: "Bob"}))
	assert.Positive(t, cmp(aggregationEntry{name: "Bob"}, aggregationEntry{name: "alice"}))
}

func TestAggregationComparatorDatesIgnoreTimeOfDay(t *testing.T) {
	cmp := aggregationComparators[models.AggregationSortDateAsc]
	morning := time.Date(2023, time.May, 2, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2023, time.May, 2, 22, 0, 0, 0, time.UTC)

	a := aggregationEntry{data: models.AggregationData{Date: &morning}}
	b := aggregationEntry{data: models.AggregationData{Date: &evening}}
	assert.Zero(t, cmp(a, b))
}

func TestPaginateManagers(t *testing.T) {
	results := []models.ManagerAggregation{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}

	paged := paginateManagers(results, models.PageRequest{Page: 2, PerPage: 2})
	assert.Equal(t, 4, paged.TotalCount)
	require.Len(t, paged.Results, 2)
	assert.Equal(t, "3", paged.Results[0].ID)
	assert.Equal(t, "4", paged.Results[1].ID)
}

func TestPaginateManagersKeepsShortListsWhole(t *testing.T) {
	results := []models.ManagerAggregation{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	paged := paginateManagers(results, models.PageRequest{Page: 5, PerPage: 10})
	assert.Equal(t, 3, paged.TotalCount)
	assert.Len(t, paged.Results, 3)
}

func TestAggregationServiceManagers(t *testing.T) {
	d1 := utcDate(2023, time.March, 10)
	repo := &fakeManagersRepo{managers: []models.ManagerWithManagees{
		{ID: "zoe@x.co", Name: "Zoé", Managees: []models.ManageeWithFeedbacks{
			managee("a@x.co", "Alice", grade(d1, 9)),
		}},
		{ID: "adam@x.co", Name: "adam", Managees: []models.ManageeWithFeedbacks{
			managee("b@x.co", "Bob", grade(d1, 6), grade(d1, 8)),
		}},
	}}
	svc := NewAggregationService(repo, disabledCache(), 0, zap.NewNop())

	result, cacheHit, err := svc.Managers(context.Background(), models.AggregationFilter{}, models.PageRequest{}, models.AggregationSortNameAsc)
	require.NoError(t, err)
	assert.False(t, cacheHit)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "adam", result.Results[0].Name)
	require.NotNil(t, result.Results[0].Average)
	assert.Equal(t, 7.0, *result.Results[0].Average)
	assert.Equal(t, 2, result.Results[0].Count)
	assert.Equal(t, "Zoé", result.Results[1].Name)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.Page)
}
