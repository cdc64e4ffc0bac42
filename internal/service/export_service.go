package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	appErrors "github.com/hubvisory/tanuki-api/pkg/errors"
	"github.com/hubvisory/tanuki-api/pkg/export"
)

type exportEmployeeRepository interface {
	ListForExport(ctx context.Context, filter models.EmployeesExportFilter) ([]models.EmployeeWithFeedbacks, error)
}

type exportFeedbackLister interface {
	List(ctx context.Context, filter models.FeedbackFilter, sortKey models.FeedbackSort, limit, offset int) ([]models.FullFeedback, error)
}

type pdfRenderer interface {
	Render(rows []export.Row, headers []export.Header, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream to the caller.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the employees and feedbacks exports.
type ExportService struct {
	employees exportEmployeeRepository
	feedbacks exportFeedbackLister
	pdf       pdfRenderer
	delimiter string
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(employees exportEmployeeRepository, feedbacks exportFeedbackLister, pdf pdfRenderer, delimiter string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if delimiter == "" {
		delimiter = export.DefaultDelimiter
	}
	return &ExportService{employees: employees, feedbacks: feedbacks, pdf: pdf, delimiter: delimiter, logger: logger}
}

// EmployeesExport renders the per-employee NPS average over the period. The
// format is csv unless pdf is requested.
func (s *ExportService) EmployeesExport(ctx context.Context, filter models.EmployeesExportFilter, format string) (*ExportFile, error) {
	employees, err := s.employees.ListForExport(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch export employees")
	}

	interval := models.DateInterval{Start: filter.Start, End: endOfDay(filter.End)}
	rows := make([]export.Row, 0, len(employees))
	for _, employee := range employees {
		var sum float64
		count := 0
		for _, fb := range employee.Feedbacks {
			if interval.Contains(fb.Date) {
				sum += fb.Grade
				count++
			}
		}
		var average interface{}
		if count > 0 {
			average = FormatAverage(sum / float64(count))
		}
		rows = append(rows, export.Row{"name": employee.Name, "average": average})
	}

	headers := EmployeesExportHeaders()
	if format == "pdf" {
		content, err := s.pdf.Render(rows, headers, "Export NPS")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: "employees-export.pdf"}, nil
	}
	content := export.ToDelimitedText(rows, headers, s.delimiter)
	return &ExportFile{Content: []byte(content), ContentType: "text/csv", Filename: "employees-export.csv"}, nil
}

// FeedbacksExport renders every feedback of the period, most recent first.
func (s *ExportService) FeedbacksExport(ctx context.Context, start, end time.Time) (*ExportFile, error) {
	until := endOfDay(end)
	filter := models.FeedbackFilter{DateFrom: &start, DateUntil: &until}
	feedbacks, err := s.feedbacks.List(ctx, filter, "-date", 0, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch export feedbacks")
	}

	rows := make([]export.Row, 0, len(feedbacks))
	for _, feedback := range feedbacks {
		clientName, accountName := " ", " "
		if feedback.Client != nil {
			clientName = feedback.Client.Name
			accountName = feedback.Client.Account.Name
		}
		managerName := " "
		if feedback.Employee.ManagerID != nil {
			managerName = NameFromEmail(*feedback.Employee.ManagerID)
		}
		rows = append(rows, export.Row{
			"name":    feedback.Employee.Name,
			"grade":   feedback.Answers.Grade,
			"client":  clientName,
			"account": accountName,
			"manager": managerName,
			"date":    feedback.Date.Format("02/01/2006"),
		})
	}

	content := export.ToDelimitedText(rows, FeedbacksExportHeaders(), s.delimiter)
	return &ExportFile{Content: []byte(content), ContentType: "text/csv", Filename: "feedbacks-export.csv"}, nil
}

// EmployeesExportHeaders lists the employees export columns.
func EmployeesExportHeaders() []export.Header {
	return []export.Header{
		{Label: "Hubvisor", Property: "name"},
		{Label: "NPS moyen", Property: "average"},
	}
}

// FeedbacksExportHeaders lists the feedbacks export columns.
func FeedbacksExportHeaders() []export.Header {
	return []export.Header{
		{Label: "Hubvisor", Property: "name"},
		{Label: "NPS", Property: "grade"},
		{Label: "Compte", Property: "account"},
		{Label: "Interlocuteur", Property: "client"},
		{Label: "HOT", Property: "manager"},
		{Label: "Date du feedback", Property: "date"},
	}
}

// FormatAverage renders an average with one decimal, dropping a trailing
// zero and using a decimal comma.
func FormatAverage(n float64) string {
	s := strconv.FormatFloat(n, 'f', 1, 64)
	s = strings.Replace(s, ".0", "", 1)
	return strings.Replace(s, ".", ",", 1)
}

var nameLetter = regexp.MustCompile(`(^\w|-+\w|\s+\w)`)

// NameFromEmail derives a display name from a work email: the local part
// with its first dot as separator, words and hyphenated parts title-cased.
func NameFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	full := strings.Replace(email[:at], ".", " ", 1)
	return nameLetter.ReplaceAllStringFunc(full, strings.ToUpper)
}
