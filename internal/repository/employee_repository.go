package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hubvisory/tanuki-api/internal/models"
)

// EmployeeRepository manages persistence for employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = "id, name, picture_url, position, startup, manager_id, contract_end_date"

// List returns employees matching the directory filters, name ascending.
// The id doubles as the work email, so the free-text query matches both.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR id ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Query+"%")
	}
	if positions := models.PositionsForType(filter.Type); len(positions) > 0 {
		conditions = append(conditions, fmt.Sprintf("LOWER(position) = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(lowered(positions)))
	}
	if filter.AllowEndDateSince != nil {
		conditions = append(conditions, fmt.Sprintf("(contract_end_date IS NULL OR contract_end_date > $%d)", len(args)+1))
		args = append(args, *filter.AllowEndDateSince)
	}
	if filter.OmitFormerEmployees {
		conditions = append(conditions, "contract_end_date IS NULL")
	}

	query := fmt.Sprintf("SELECT %s FROM employees WHERE %s ORDER BY name ASC",
		employeeColumns, strings.Join(conditions, " AND "))

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// GetByID fetches a single employee. The id is the work email.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// ListManagersWithManagees fetches the aggregation input: every matching
// manager with its direct reports and their raw feedback grades. Contract
// filtering keeps employees active during the period when a start date is
// given, current employees otherwise.
func (r *EmployeeRepository) ListManagersWithManagees(ctx context.Context, filter models.AggregationFilter) ([]models.ManagerWithManagees, error) {
	conditions := []string{"LOWER(position) = ANY($1)"}
	args := []interface{}{pq.Array(lowered(models.ManagerPositions))}

	contractCondition, args := contractOpenCondition(filter.Start, args)
	conditions = append(conditions, contractCondition)
	if len(filter.Managers) > 0 {
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Managers))
	}
	if len(filter.Startups) > 0 {
		conditions = append(conditions, fmt.Sprintf("startup = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Startups))
	}
	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Query+"%")
	}

	managersQuery := fmt.Sprintf("SELECT id, name, picture_url, contract_end_date FROM employees WHERE %s",
		strings.Join(conditions, " AND "))
	var managers []models.ManagerWithManagees
	if err := r.db.SelectContext(ctx, &managers, managersQuery, args...); err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	if len(managers) == 0 {
		return managers, nil
	}

	managerIDs := make([]string, 0, len(managers))
	for _, m := range managers {
		managerIDs = append(managerIDs, m.ID)
	}

	manageeConditions := []string{"manager_id = ANY($1)"}
	manageeArgs := []interface{}{pq.Array(managerIDs)}
	manageeContract, manageeArgs := contractOpenCondition(filter.Start, manageeArgs)
	manageeConditions = append(manageeConditions, manageeContract)

	manageesQuery := fmt.Sprintf("SELECT id, name, picture_url, manager_id, contract_end_date FROM employees WHERE %s",
		strings.Join(manageeConditions, " AND "))
	var managees []struct {
		models.ManageeWithFeedbacks
		ManagerID string `db:"manager_id"`
	}
	if err := r.db.SelectContext(ctx, &managees, manageesQuery, manageeArgs...); err != nil {
		return nil, fmt.Errorf("list managees: %w", err)
	}

	manageeIDs := make([]string, 0, len(managees))
	for _, m := range managees {
		manageeIDs = append(manageeIDs, m.ID)
	}
	grades := map[string][]models.FeedbackGrade{}
	if len(manageeIDs) > 0 {
		const feedbacksQuery = "SELECT employee_id, date, grade FROM feedbacks WHERE employee_id = ANY($1)"
		var rows []struct {
			models.FeedbackGrade
			EmployeeID string `db:"employee_id"`
		}
		if err := r.db.SelectContext(ctx, &rows, feedbacksQuery, pq.Array(manageeIDs)); err != nil {
			return nil, fmt.Errorf("list managee feedbacks: %w", err)
		}
		for _, row := range rows {
			grades[row.EmployeeID] = append(grades[row.EmployeeID], row.FeedbackGrade)
		}
	}

	byManager := map[string][]models.ManageeWithFeedbacks{}
	for _, m := range managees {
		managee := m.ManageeWithFeedbacks
		managee.Feedbacks = grades[managee.ID]
		byManager[m.ManagerID] = append(byManager[m.ManagerID], managee)
	}
	for i := range managers {
		managers[i].Managees = byManager[managers[i].ID]
	}
	return managers, nil
}

// ListForExport returns the export population with its raw feedback grades,
// name ascending. Every population is restricted to the main startups and to
// contracts still open after the period start.
func (r *EmployeeRepository) ListForExport(ctx context.Context, filter models.EmployeesExportFilter) ([]models.EmployeeWithFeedbacks, error) {
	conditions := []string{}
	args := []interface{}{}

	switch filter.Type {
	case models.ExportTypeManagees:
		conditions = append(conditions, fmt.Sprintf("id <> $%d", len(args)+1))
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("manager_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	case models.ExportTypeManagers:
		conditions = append(conditions, fmt.Sprintf("LOWER(position) = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(lowered(models.ManagerPositions)))
	default:
		conditions = append(conditions, fmt.Sprintf("NOT (LOWER(position) = ANY($%d))", len(args)+1))
		args = append(args, pq.Array(lowered(models.ManagerPositions)))
	}

	conditions = append(conditions, fmt.Sprintf("startup = ANY($%d)", len(args)+1))
	args = append(args, pq.Array(models.MainStartups))
	conditions = append(conditions, fmt.Sprintf("(contract_end_date IS NULL OR contract_end_date > $%d)", len(args)+1))
	args = append(args, filter.Start)

	query := fmt.Sprintf("SELECT %s FROM employees WHERE %s ORDER BY name ASC",
		employeeColumns, strings.Join(conditions, " AND "))
	var employees []models.EmployeeWithFeedbacks
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list export employees: %w", err)
	}
	if len(employees) == 0 {
		return employees, nil
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}
	const feedbacksQuery = "SELECT employee_id, date, grade FROM feedbacks WHERE employee_id = ANY($1)"
	var rows []struct {
		models.FeedbackGrade
		EmployeeID string `db:"employee_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, feedbacksQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list export feedbacks: %w", err)
	}
	grades := map[string][]models.FeedbackGrade{}
	for _, row := range rows {
		grades[row.EmployeeID] = append(grades[row.EmployeeID], row.FeedbackGrade)
	}
	for i := range employees {
		employees[i].Feedbacks = grades[employees[i].ID]
	}
	return employees, nil
}

// contractOpenCondition keeps employees active during the period when a
// start date is given, current employees otherwise.
func contractOpenCondition(start *time.Time, args []interface{}) (string, []interface{}) {
	if start == nil {
		return "contract_end_date IS NULL", args
	}
	condition := fmt.Sprintf("(contract_end_date IS NULL OR contract_end_date > $%d)", len(args)+1)
	return condition, append(args, *start)
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
