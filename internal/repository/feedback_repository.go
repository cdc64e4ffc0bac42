package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hubvisory/tanuki-api/internal/models"
)

// FeedbackRepository manages persistence for feedback records.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

const feedbackColumns = `f.id, f.employee_id, f.client_id, f.date, f.created_by, f.updated_by, f.created_at, f.updated_at,
	f.grade AS "answers.grade", f.positives AS "answers.positives", f.areas_of_improvement AS "answers.areas_of_improvement",
	f.context AS "answers.context", f.objectives AS "answers.objectives", f.details AS "answers.details"`

const fullFeedbackColumns = feedbackColumns + `,
	e.id AS "employee.id", e.name AS "employee.name", e.picture_url AS "employee.picture_url",
	e.position AS "employee.position", e.startup AS "employee.startup",
	e.manager_id AS "employee.manager_id", e.contract_end_date AS "employee.contract_end_date",
	c.id AS client_row_id, c.name AS client_name, c.email AS client_email, c.details AS client_details,
	a.id AS account_id, a.name AS account_name, a.account_manager_id AS account_manager_id`

const fullFeedbackJoins = `FROM feedbacks f
	JOIN employees e ON e.id = f.employee_id
	LEFT JOIN clients c ON c.id = f.client_id
	LEFT JOIN accounts a ON a.id = c.account_id`

type fullFeedbackRow struct {
	models.Feedback
	Employee       models.Employee `db:"employee"`
	ClientRowID    sql.NullString  `db:"client_row_id"`
	ClientName     sql.NullString  `db:"client_name"`
	ClientEmail    sql.NullString  `db:"client_email"`
	ClientDetails  sql.NullString  `db:"client_details"`
	AccountID      sql.NullString  `db:"account_id"`
	AccountName    sql.NullString  `db:"account_name"`
	AccountManager sql.NullString  `db:"account_manager_id"`
}

func (row fullFeedbackRow) toModel() models.FullFeedback {
	full := models.FullFeedback{Feedback: row.Feedback, Employee: row.Employee}
	if row.ClientRowID.Valid {
		client := models.ClientWithAccount{
			Client: models.Client{
				ID:   row.ClientRowID.String,
				Name: row.ClientName.String,
			},
			Account: models.Account{
				ID:   row.AccountID.String,
				Name: row.AccountName.String,
			},
		}
		client.AccountID = row.AccountID.String
		if row.ClientEmail.Valid {
			client.Email = &row.ClientEmail.String
		}
		if row.ClientDetails.Valid {
			client.Details = &row.ClientDetails.String
		}
		if row.AccountManager.Valid {
			client.Account.AccountManagerID = &row.AccountManager.String
		}
		full.Client = &client
	}
	return full
}

// feedbackSortColumns maps sortable fields to ORDER BY targets on the joined
// listing query.
var feedbackSortColumns = map[models.FeedbackSort]string{
	models.FeedbackSortEmployee: "e.name",
	models.FeedbackSortManager:  "(SELECT m.name FROM employees m WHERE m.id = e.manager_id)",
	models.FeedbackSortClient:   "c.name",
	models.FeedbackSortAccount:  "a.name",
	models.FeedbackSortScore:    "f.grade",
	models.FeedbackSortDate:     "f.date",
}

func feedbackOrderBy(sortKey models.FeedbackSort) string {
	direction := "ASC"
	field := sortKey
	if strings.HasPrefix(string(sortKey), "-") {
		direction = "DESC"
		field = models.FeedbackSort(strings.TrimPrefix(string(sortKey), "-"))
	}
	column, ok := feedbackSortColumns[field]
	if !ok {
		return "f.date DESC"
	}
	return column + " " + direction
}

func feedbackConditions(filter models.FeedbackFilter) ([]string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("f.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateUntil != nil {
		conditions = append(conditions, fmt.Sprintf("f.date <= $%d", len(args)+1))
		args = append(args, *filter.DateUntil)
	}
	if filter.Employee != "" {
		conditions = append(conditions, fmt.Sprintf("(e.name ILIKE $%d OR e.id ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Employee+"%")
	}
	if len(filter.Startups) > 0 {
		conditions = append(conditions, fmt.Sprintf("e.startup = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Startups))
	}
	if len(filter.Managers) > 0 {
		conditions = append(conditions, fmt.Sprintf("e.manager_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Managers))
	}
	return conditions, args
}

// List returns feedbacks with their employee and client relations. A zero
// limit disables slicing.
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter, sortKey models.FeedbackSort, limit, offset int) ([]models.FullFeedback, error) {
	conditions, args := feedbackConditions(filter)
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s",
		fullFeedbackColumns, fullFeedbackJoins, strings.Join(conditions, " AND "), feedbackOrderBy(sortKey))
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
	}

	var rows []fullFeedbackRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list feedbacks: %w", err)
	}
	feedbacks := make([]models.FullFeedback, 0, len(rows))
	for _, row := range rows {
		feedbacks = append(feedbacks, row.toModel())
	}
	return feedbacks, nil
}

// Count returns the number of feedbacks matching the filter.
func (r *FeedbackRepository) Count(ctx context.Context, filter models.FeedbackFilter) (int, error) {
	conditions, args := feedbackConditions(filter)
	query := fmt.Sprintf("SELECT COUNT(f.id) %s WHERE %s", fullFeedbackJoins, strings.Join(conditions, " AND "))
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count feedbacks: %w", err)
	}
	return total, nil
}

// GetByID fetches a feedback with its relations.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.FullFeedback, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE f.id = $1", fullFeedbackColumns, fullFeedbackJoins)
	var row fullFeedbackRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	full := row.toModel()
	return &full, nil
}

// Create inserts a new feedback record.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now
	const query = `INSERT INTO feedbacks (id, employee_id, client_id, date, grade, positives, areas_of_improvement, context, objectives, details, created_by, created_at, updated_at)
	VALUES (:id, :employee_id, :client_id, :date, :answers.grade, :answers.positives, :answers.areas_of_improvement, :answers.context, :answers.objectives, :answers.details, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, feedback); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// UpdateAnswers rewrites the questionnaire, date and client of a feedback.
func (r *FeedbackRepository) UpdateAnswers(ctx context.Context, feedback *models.Feedback) error {
	feedback.UpdatedAt = time.Now().UTC()
	const query = `UPDATE feedbacks SET client_id = :client_id, date = :date, grade = :answers.grade,
	positives = :answers.positives, areas_of_improvement = :answers.areas_of_improvement,
	context = :answers.context, objectives = :answers.objectives, details = :answers.details,
	updated_by = :updated_by, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, feedback)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAndArchive moves a feedback into feedback_archives and removes it
// from feedbacks inside one transaction. The archived copy gets a fresh id
// to avoid conflicts in the archive table.
func (r *FeedbackRepository) DeleteAndArchive(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feedback archive transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const archiveQuery = `INSERT INTO feedback_archives (id, employee_id, client_id, date, grade, positives, areas_of_improvement, context, objectives, details, created_by, updated_by, created_at, updated_at)
	SELECT $1, employee_id, client_id, date, grade, positives, areas_of_improvement, context, objectives, details, created_by, updated_by, created_at, updated_at
	FROM feedbacks WHERE id = $2`
	result, err := tx.ExecContext(ctx, archiveQuery, uuid.NewString(), id)
	if err != nil {
		return fmt.Errorf("archive feedback: %w", err)
	}
	if affected, rowsErr := result.RowsAffected(); rowsErr == nil && affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM feedbacks WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit feedback archive: %w", err)
	}
	return nil
}

// OldestFeedbackDate returns the date of the earliest feedback, optionally
// restricted to the managees of one manager. It returns nil when no feedback
// matches.
func (r *FeedbackRepository) OldestFeedbackDate(ctx context.Context, filter models.OldestFeedbackFilter) (*time.Time, error) {
	query := "SELECT f.date FROM feedbacks f"
	args := []interface{}{}
	if filter.Manager != "" {
		query += " JOIN employees e ON e.id = f.employee_id WHERE e.manager_id = $1"
		args = append(args, filter.Manager)
	}
	query += " ORDER BY f.date ASC LIMIT 1"

	var date time.Time
	if err := r.db.GetContext(ctx, &date, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("oldest feedback: %w", err)
	}
	return &date, nil
}

// IndexForEmployee returns the 1-based chronological rank of a feedback
// among every feedback of the same employee.
func (r *FeedbackRepository) IndexForEmployee(ctx context.Context, feedbackID, employeeID string) (int, error) {
	const query = `SELECT rank FROM (
		SELECT id, RANK() OVER (ORDER BY date ASC) AS rank FROM feedbacks WHERE employee_id = $1
	) ranked WHERE id = $2`
	var index int
	if err := r.db.GetContext(ctx, &index, query, employeeID, feedbackID); err != nil {
		return 0, err
	}
	return index, nil
}
