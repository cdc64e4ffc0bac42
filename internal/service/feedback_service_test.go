package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type fakeFeedbackRepo struct {
	feedbacks  []models.FullFeedback
	count      int
	created    *models.Feedback
	updated    *models.Feedback
	deleted    []string
	updateErr  error
	deleteErr  error
	lastFilter models.FeedbackFilter
	lastLimit  int
	lastOffset int
}

func (f *fakeFeedbackRepo) List(_ context.Context, filter models.FeedbackFilter, _ models.FeedbackSort, limit, offset int) ([]models.FullFeedback, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	f.lastOffset = offset
	return f.feedbacks, nil
}

func (f *fakeFeedbackRepo) Count(_ context.Context, _ models.FeedbackFilter) (int, error) {
	return f.count, nil
}

func (f *fakeFeedbackRepo) GetByID(_ context.Context, id string) (*models.FullFeedback, error) {
	for i := range f.feedbacks {
		if f.feedbacks[i].ID == id {
			return &f.feedbacks[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *models.Feedback) error {
	f.created = feedback
	return nil
}

func (f *fakeFeedbackRepo) UpdateAnswers(_ context.Context, feedback *models.Feedback) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = feedback
	return nil
}

func (f *fakeFeedbackRepo) DeleteAndArchive(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFeedbackRepo) IndexForEmployee(_ context.Context, _, _ string) (int, error) {
	return 1, nil
}

func validFeedbackPayload() models.FeedbackPayload {
	return models.FeedbackPayload{
		ClientID:   "client-1",
		EmployeeID: "alice@hubvisory.com",
		Date:       "2023-03-10",
		Answers: models.FeedbackAnswersPayload{
			Grade:              8,
			Positives:          "great delivery",
			AreasOfImprovement: "communication",
			Context:            "sprint review",
			Objectives:         "keep it up",
		},
	}
}

func newFeedbackService(repo *fakeFeedbackRepo) *FeedbackService {
	svc := NewFeedbackService(repo, disabledCache(), nil, zap.NewNop())
	svc.now = func() time.Time { return utcDate(2023, time.June, 1) }
	return svc
}

func TestFeedbackServiceCreate(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := newFeedbackService(repo)

	feedback, err := svc.Create(context.Background(), validFeedbackPayload(), "author@hubvisory.com")
	require.NoError(t, err)

	assert.Equal(t, "author@hubvisory.com", feedback.CreatedBy)
	assert.Equal(t, utcDate(2023, time.March, 10), feedback.Date)
	assert.Nil(t, feedback.Answers.Details)
	require.NotNil(t, repo.created)
}

func TestFeedbackServiceCreateRejectsOutOfRangeGrade(t *testing.T) {
	svc := newFeedbackService(&fakeFeedbackRepo{})

	payload := validFeedbackPayload()
	payload.Answers.Grade = 0.3
	_, err := svc.Create(context.Background(), payload, "author@hubvisory.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	payload.Answers.Grade = 10.5
	_, err = svc.Create(context.Background(), payload, "author@hubvisory.com")
	require.Error(t, err)
}

func TestFeedbackServiceCreateRejectsDatesBeforeLaunch(t *testing.T) {
	svc := newFeedbackService(&fakeFeedbackRepo{})

	payload := validFeedbackPayload()
	payload.Date = "2022-01-31"
	_, err := svc.Create(context.Background(), payload, "author@hubvisory.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestFeedbackServiceCreateRejectsFutureDates(t *testing.T) {
	svc := newFeedbackService(&fakeFeedbackRepo{})

	payload := validFeedbackPayload()
	payload.Date = "2023-06-02"
	_, err := svc.Create(context.Background(), payload, "author@hubvisory.com")
	require.Error(t, err)
}

func TestFeedbackServiceCreateAcceptsToday(t *testing.T) {
	svc := newFeedbackService(&fakeFeedbackRepo{})

	payload := validFeedbackPayload()
	payload.Date = "2023-06-01"
	_, err := svc.Create(context.Background(), payload, "author@hubvisory.com")
	require.NoError(t, err)
}

func TestFeedbackServiceUpdateNotFound(t *testing.T) {
	repo := &fakeFeedbackRepo{updateErr: sql.ErrNoRows}
	svc := newFeedbackService(repo)

	err := svc.Update(context.Background(), "missing", validFeedbackPayload(), "author@hubvisory.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestFeedbackServiceUpdateSetsAuthor(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := newFeedbackService(repo)

	err := svc.Update(context.Background(), "fb-1", validFeedbackPayload(), "editor@hubvisory.com")
	require.NoError(t, err)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "fb-1", repo.updated.ID)
	require.NotNil(t, repo.updated.UpdatedBy)
	assert.Equal(t, "editor@hubvisory.com", *repo.updated.UpdatedBy)
}

func TestFeedbackServiceDeleteNotFound(t *testing.T) {
	repo := &fakeFeedbackRepo{deleteErr: sql.ErrNoRows}
	svc := newFeedbackService(repo)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestFeedbackServiceListUnpaginated(t *testing.T) {
	repo := &fakeFeedbackRepo{feedbacks: []models.FullFeedback{{}, {}}}
	svc := newFeedbackService(repo)

	result, err := svc.List(context.Background(), models.FeedbackFilter{}, nil, models.FeedbackSortDate)
	require.NoError(t, err)
	assert.Zero(t, result.Page)
	assert.Len(t, result.Feedbacks, 2)
	assert.Zero(t, repo.lastLimit)
}

func TestFeedbackServiceListPaginated(t *testing.T) {
	repo := &fakeFeedbackRepo{feedbacks: []models.FullFeedback{{}}, count: 11}
	svc := newFeedbackService(repo)

	result, err := svc.List(context.Background(), models.FeedbackFilter{}, &models.PageRequest{Page: 2, PerPage: 5}, models.FeedbackSortDate)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 11, result.TotalCount)
	assert.Equal(t, 5, repo.lastLimit)
	assert.Equal(t, 5, repo.lastOffset)
}

func TestFeedbackServiceListPushesUntilToEndOfDay(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := newFeedbackService(repo)

	until := utcDate(2023, time.March, 31)
	_, err := svc.List(context.Background(), models.FeedbackFilter{DateUntil: &until}, nil, models.FeedbackSortDate)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.DateUntil)
	assert.Equal(t, 23, repo.lastFilter.DateUntil.Hour())
	assert.Equal(t, 31, repo.lastFilter.DateUntil.Day())
}
