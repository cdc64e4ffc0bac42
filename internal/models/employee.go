package models

import "time"

// EmployeeType buckets positions into the two filterable populations.
type EmployeeType string

const (
	EmployeeTypeManager EmployeeType = "manager"
	EmployeeTypeACMA    EmployeeType = "ACMA"
)

// ManagerPositions lists the positions counted as team managers.
var ManagerPositions = []string{
	"Tech Team Manager",
	"Product Team Manager",
	"Design Team Manager",
	"Campus Director",
	"VP",
	"CTO",
}

// ACMAPositions lists the account-management positions.
var ACMAPositions = []string{
	"Account Executive",
	"Responsable commercial",
	"Account Manager",
}

// AdminPositions grants the admin role when provisioning a user.
var AdminPositions = []string{
	"Co-fondateur",
	"VP",
	"HR Team Manager Senior",
	"Account Executive",
	"Responsable commercial",
	"Account Manager",
	"ACMA Team Manager",
}

// MainStartups restricts exports to the consulting entities.
var MainStartups = []string{"epic", "atom", "source", "summit", "campus"}

// PositionsForType resolves an employee type to its position list.
func PositionsForType(t EmployeeType) []string {
	switch t {
	case EmployeeTypeManager:
		return ManagerPositions
	case EmployeeTypeACMA:
		return ACMAPositions
	}
	return nil
}

// Employee represents a consultant or manager. The id is the work email.
type Employee struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	PictureURL      string     `db:"picture_url" json:"pictureURL"`
	Position        string     `db:"position" json:"position"`
	Startup         string     `db:"startup" json:"startup"`
	ManagerID       *string    `db:"manager_id" json:"managerId,omitempty"`
	ContractEndDate *time.Time `db:"contract_end_date" json:"contractEndDate,omitempty"`
}

// Active reports whether the contract is open at the given instant.
func (e Employee) Active(at time.Time) bool {
	return e.ContractEndDate == nil || e.ContractEndDate.After(at)
}

// EmployeeFilter captures filtering criteria for the directory listing.
type EmployeeFilter struct {
	Query               string
	Type                EmployeeType
	AllowEndDateSince   *time.Time
	OmitFormerEmployees bool
}

// AggregationData carries the per-scope feedback rollup. Average and Date
// are nil exactly when Count is zero.
type AggregationData struct {
	Date    *time.Time `json:"date"`
	Count   int        `json:"count"`
	Average *float64   `json:"average"`
}

// ManageeAggregation is the rollup for a single direct report.
type ManageeAggregation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureURL"`
	AggregationData
}

// ManagerAggregation is the team rollup plus the per-managee breakdown.
type ManagerAggregation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureURL"`
	AggregationData
	Managees []ManageeAggregation `json:"managees"`
}

// FeedbackGrade is the slice of a feedback the aggregation consumes.
type FeedbackGrade struct {
	Date  time.Time `db:"date" json:"date"`
	Grade float64   `db:"grade" json:"grade"`
}

// ManageeWithFeedbacks is a direct report together with its raw feedback.
type ManageeWithFeedbacks struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	PictureURL      string          `db:"picture_url" json:"pictureURL"`
	ContractEndDate *time.Time      `db:"contract_end_date" json:"contractEndDate,omitempty"`
	Feedbacks       []FeedbackGrade `json:"feedbacks"`
}

// ManagerWithManagees is the aggregation input fetched from persistence.
type ManagerWithManagees struct {
	ID              string                 `db:"id" json:"id"`
	Name            string                 `db:"name" json:"name"`
	PictureURL      string                 `db:"picture_url" json:"pictureURL"`
	ContractEndDate *time.Time             `db:"contract_end_date" json:"contractEndDate,omitempty"`
	Managees        []ManageeWithFeedbacks `json:"managees"`
}

// AggregationFilter scopes the managers aggregation.
type AggregationFilter struct {
	Query    string
	Startups []string
	Managers []string
	Start    *time.Time
	End      *time.Time
}

// AggregationSort names the supported sort keys. A "-" prefix inverts.
type AggregationSort string

const (
	AggregationSortNameAsc     AggregationSort = "name"
	AggregationSortAverageAsc  AggregationSort = "average"
	AggregationSortCountAsc    AggregationSort = "count"
	AggregationSortDateAsc     AggregationSort = "date"
	AggregationSortNameDesc    AggregationSort = "-name"
	AggregationSortAverageDesc AggregationSort = "-average"
	AggregationSortCountDesc   AggregationSort = "-count"
	AggregationSortDateDesc    AggregationSort = "-date"
)

// PaginatedManagersAggregation is the aggregation endpoint payload.
type PaginatedManagersAggregation struct {
	Page       int                  `json:"page"`
	PerPage    int                  `json:"perPage"`
	TotalCount int                  `json:"totalCount"`
	Results    []ManagerAggregation `json:"results"`
}

// EmployeesExportType selects the export population.
type EmployeesExportType string

const (
	ExportTypeManagers    EmployeesExportType = "managers"
	ExportTypeConsultants EmployeesExportType = "consultants"
	ExportTypeManagees    EmployeesExportType = "managees"
)

// EmployeesExportFilter scopes the employees average export.
type EmployeesExportFilter struct {
	UserID string
	Type   EmployeesExportType
	Start  time.Time
	End    time.Time
}

// EmployeeWithFeedbacks backs the employees export.
type EmployeeWithFeedbacks struct {
	Employee
	Feedbacks []FeedbackGrade `json:"feedbacks"`
}
