package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
)

type feedbackRepository interface {
	List(ctx context.Context, filter models.FeedbackFilter, sortKey models.FeedbackSort, limit, offset int) ([]models.FullFeedback, error)
	Count(ctx context.Context, filter models.FeedbackFilter) (int, error)
	GetByID(ctx context.Context, id string) (*models.FullFeedback, error)
	Create(ctx context.Context, feedback *models.Feedback) error
	UpdateAnswers(ctx context.Context, feedback *models.Feedback) error
	DeleteAndArchive(ctx context.Context, id string) error
	IndexForEmployee(ctx context.Context, feedbackID, employeeID string) (int, error)
}

// Feedback dates are only accepted from the app's go-live month onwards.
var feedbackEpoch = time.Date(2022, time.February, 1, 0, 0, 0, 0, time.UTC)

// FeedbackService drives the feedback lifecycle.
type FeedbackService struct {
	repo      feedbackRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(repo feedbackRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns feedbacks matching the filter. A nil page disables pagination
// and returns the full list without counting.
func (s *FeedbackService) List(ctx context.Context, filter models.FeedbackFilter, page *models.PageRequest, sortKey models.FeedbackSort) (*models.PaginatedFeedbacks, error) {
	if filter.DateUntil != nil {
		until := endOfDay(*filter.DateUntil)
		filter.DateUntil = &until
	}

	if page == nil {
		feedbacks, err := s.repo.List(ctx, filter, sortKey, 0, 0)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedbacks")
		}
		return &models.PaginatedFeedbacks{Feedbacks: feedbacks}, nil
	}

	normalized := page.Normalize()
	totalCount, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count feedbacks")
	}
	feedbacks, err := s.repo.List(ctx, filter, sortKey, normalized.PerPage, normalized.PerPage*(normalized.Page-1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedbacks")
	}
	return &models.PaginatedFeedbacks{
		Page:       normalized.Page,
		PerPage:    normalized.PerPage,
		TotalCount: totalCount,
		Feedbacks:  feedbacks,
	}, nil
}

// Get returns a single feedback with its relations.
func (s *FeedbackService) Get(ctx context.Context, id string) (*models.FullFeedback, error) {
	feedback, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "the feedback does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	return feedback, nil
}

// Index returns the 1-based chronological rank of a feedback among every
// feedback of the same employee.
func (s *FeedbackService) Index(ctx context.Context, feedbackID, employeeID string) (int, error) {
	index, err := s.repo.IndexForEmployee(ctx, feedbackID, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "the feedback does not exist")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank feedback")
	}
	return index, nil
}

// Create records a new feedback authored by the given user.
func (s *FeedbackService) Create(ctx context.Context, payload models.FeedbackPayload, userID string) (*models.Feedback, error) {
	feedback, err := s.buildFeedback(payload)
	if err != nil {
		return nil, err
	}
	feedback.CreatedBy = userID

	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback")
	}
	s.invalidateAggregations(ctx)
	return feedback, nil
}

// Update rewrites the answers, client and date of an existing feedback.
func (s *FeedbackService) Update(ctx context.Context, id string, payload models.FeedbackPayload, userID string) error {
	feedback, err := s.buildFeedback(payload)
	if err != nil {
		return err
	}
	feedback.ID = id
	feedback.UpdatedBy = &userID

	if err := s.repo.UpdateAnswers(ctx, feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "the feedback does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update feedback")
	}
	s.invalidateAggregations(ctx)
	return nil
}

// Delete moves a feedback to the archive table and removes it.
func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteAndArchive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "the feedback does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete feedback")
	}
	s.invalidateAggregations(ctx)
	return nil
}

func (s *FeedbackService) buildFeedback(payload models.FeedbackPayload) (*models.Feedback, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	date, err := time.ParseInLocation("2006-01-02", payload.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback date")
	}
	if date.Before(feedbackEpoch) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("feedback date must not precede %s", feedbackEpoch.Format("2006-01-02")))
	}
	if date.After(endOfDay(s.now().UTC())) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "feedback date must not be in the future")
	}

	feedback := &models.Feedback{
		EmployeeID: payload.EmployeeID,
		ClientID:   &payload.ClientID,
		Date:       date,
		Answers: models.FeedbackAnswers{
			Grade:              payload.Answers.Grade,
			Positives:          payload.Answers.Positives,
			AreasOfImprovement: payload.Answers.AreasOfImprovement,
			Context:            payload.Answers.Context,
			Objectives:         payload.Answers.Objectives,
		},
	}
	if payload.Answers.Details != "" {
		feedback.Answers.Details = &payload.Answers.Details
	}
	return feedback, nil
}

// invalidateAggregations drops cached manager rollups after a write.
func (s *FeedbackService) invalidateAggregations(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "aggregation:managers:*"); err != nil {
		s.logger.Warn("aggregation cache invalidation failed", zap.Error(err))
	}
}
