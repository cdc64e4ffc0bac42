package models

import "time"

// FeedbackAnswers holds the questionnaire part of a feedback.
type FeedbackAnswers struct {
	Grade              float64 `db:"grade" json:"grade"`
	Positives          string  `db:"positives" json:"positives"`
	AreasOfImprovement string  `db:"areas_of_improvement" json:"areasOfImprovement"`
	Context            string  `db:"context" json:"context"`
	Objectives         string  `db:"objectives" json:"objectives"`
	Details            *string `db:"details" json:"details,omitempty"`
}

// Feedback is a single NPS-style review left by a client for a consultant.
type Feedback struct {
	ID         string          `db:"id" json:"id"`
	EmployeeID string          `db:"employee_id" json:"employeeId"`
	ClientID   *string         `db:"client_id" json:"clientId,omitempty"`
	Date       time.Time       `db:"date" json:"date"`
	Answers    FeedbackAnswers `db:"answers" json:"answers"`
	CreatedBy  string          `db:"created_by" json:"createdBy"`
	UpdatedBy  *string         `db:"updated_by" json:"updatedBy,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// FullFeedback joins the feedback with its employee and client rows.
type FullFeedback struct {
	Feedback
	Employee Employee           `db:"employee" json:"employee"`
	Client   *ClientWithAccount `json:"client,omitempty"`
}

// FeedbackFilter captures the feedback listing criteria.
type FeedbackFilter struct {
	Employee  string
	Managers  []string
	Startups  []string
	DateFrom  *time.Time
	DateUntil *time.Time
}

// FeedbackSort names the sortable listing fields. A "-" prefix inverts.
type FeedbackSort string

const (
	FeedbackSortEmployee FeedbackSort = "employee"
	FeedbackSortManager  FeedbackSort = "manager"
	FeedbackSortClient   FeedbackSort = "client"
	FeedbackSortAccount  FeedbackSort = "account"
	FeedbackSortScore    FeedbackSort = "score"
	FeedbackSortDate     FeedbackSort = "date"
)

// PaginatedFeedbacks is the feedback listing payload.
type PaginatedFeedbacks struct {
	Page       int            `json:"page,omitempty"`
	PerPage    int            `json:"perPage,omitempty"`
	TotalCount int            `json:"totalCount,omitempty"`
	Feedbacks  []FullFeedback `json:"feedbacks"`
}

// FeedbackPayload is the create/update request body.
type FeedbackPayload struct {
	ClientID   string                 `json:"clientId" validate:"required"`
	EmployeeID string                 `json:"employeeId" validate:"required,email"`
	Answers    FeedbackAnswersPayload `json:"answers" validate:"required"`
	Date       string                 `json:"date" validate:"required,datetime=2006-01-02"`
}

// FeedbackAnswersPayload is the questionnaire request body.
type FeedbackAnswersPayload struct {
	Grade              float64 `json:"grade" validate:"required,min=0.5,max=10"`
	Positives          string  `json:"positives" validate:"required,max=10000"`
	AreasOfImprovement string  `json:"areasOfImprovement" validate:"required,max=10000"`
	Context            string  `json:"context" validate:"required,max=10000"`
	Objectives         string  `json:"objectives" validate:"required,max=10000"`
	Details            string  `json:"details" validate:"omitempty,max=10000"`
}

// OldestFeedbackFilter optionally scopes the oldest-feedback lookup to the
// managees of one manager.
type OldestFeedbackFilter struct {
	Manager string
}

// ExportRequest is the export endpoints' request body. Start and End bound
// the averaged period.
type ExportRequest struct {
	Start  string `json:"start" validate:"required,datetime=2006-01-02"`
	End    string `json:"end" validate:"required,datetime=2006-01-02"`
	Type   string `json:"type" validate:"omitempty,oneof=managers consultants managees"`
	Format string `json:"format" validate:"omitempty,oneof=csv pdf"`
}
