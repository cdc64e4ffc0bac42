package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/pkg/export"
)

type fakeExportEmployees struct {
	employees  []models.EmployeeWithFeedbacks
	lastFilter models.EmployeesExportFilter
}

func (f *fakeExportEmployees) ListForExport(_ context.Context, filter models.EmployeesExportFilter) ([]models.EmployeeWithFeedbacks, error) {
	f.lastFilter = filter
	return f.employees, nil
}

type fakeFeedbackLister struct {
	feedbacks  []models.FullFeedback
	lastFilter models.FeedbackFilter
	lastSort   models.FeedbackSort
}

func (f *fakeFeedbackLister) List(_ context.Context, filter models.FeedbackFilter, sortKey models.FeedbackSort, _, _ int) ([]models.FullFeedback, error) {
	f.lastFilter = filter
	f.lastSort = sortKey
	return f.feedbacks, nil
}

type fakePDF struct {
	rows    []export.Row
	headers []export.Header
	title   string
}

func (f *fakePDF) Render(rows []export.Row, headers []export.Header, title string) ([]byte, error) {
	f.rows = rows
	f.headers = headers
	f.title = title
	return []byte("%PDF"), nil
}

func TestFormatAverage(t *testing.T) {
	assert.Equal(t, "6,2", FormatAverage(6.233))
	assert.Equal(t, "2", FormatAverage(2.0))
	assert.Equal(t, "10", FormatAverage(9.96))
	assert.Equal(t, "7,5", FormatAverage(7.5))
}

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "Jean Dupont", NameFromEmail("jean.dupont@hubvisory.com"))
	assert.Equal(t, "Marie-Anne Le-Gall", NameFromEmail("marie-anne.le-gall@hubvisory.com"))
	assert.Equal(t, "", NameFromEmail("not-an-email"))
}

func TestEmployeesExportCSV(t *testing.T) {
	start := utcDate(2023, time.February, 1)
	end := utcDate(2023, time.July, 31)
	repo := &fakeExportEmployees{employees: []models.EmployeeWithFeedbacks{
		{
			Employee: models.Employee{ID: "a@x.co", Name: "Alice"},
			Feedbacks: []models.FeedbackGrade{
				{Date: utcDate(2023, time.March, 1), Grade: 8},
				{Date: utcDate(2023, time.April, 1), Grade: 9},
				{Date: utcDate(2023, time.January, 1), Grade: 1},
			},
		},
		{Employee: models.Employee{ID: "b@x.co", Name: "Bob"}},
	}}
	svc := NewExportService(repo, &fakeFeedbackLister{}, nil, ";", zap.NewNop())

	file, err := svc.EmployeesExport(context.Background(), models.EmployeesExportFilter{
		Type:  models.ExportTypeConsultants,
		Start: start,
		End:   end,
	}, "csv")
	require.NoError(t, err)

	assert.Equal(t, "employees-export.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(string(file.Content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Hubvisor;NPS moyen", lines[0])
	assert.Equal(t, "Alice;8,5", lines[1])
	assert.Equal(t, "Bob;", lines[2])
}

func TestEmployeesExportPDF(t *testing.T) {
	pdf := &fakePDF{}
	repo := &fakeExportEmployees{employees: []models.EmployeeWithFeedbacks{
		{Employee: models.Employee{ID: "a@x.co", Name: "Alice"}},
	}}
	svc := NewExportService(repo, &fakeFeedbackLister{}, pdf, ";", zap.NewNop())

	file, err := svc.EmployeesExport(context.Background(), models.EmployeesExportFilter{
		Start: utcDate(2023, time.February, 1),
		End:   utcDate(2023, time.July, 31),
	}, "pdf")
	require.NoError(t, err)

	assert.Equal(t, "employees-export.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Export NPS", pdf.title)
	assert.Len(t, pdf.rows, 1)
}

func TestFeedbacksExport(t *testing.T) {
	manager := "marc.dubois@hubvisory.com"
	feedbacks := []models.FullFeedback{
		{
			Feedback: models.Feedback{
				Date:    utcDate(2023, time.March, 5),
				Answers: models.FeedbackAnswers{Grade: 9},
			},
			Employee: models.Employee{Name: "Alice", ManagerID: &manager},
			Client: &models.ClientWithAccount{
				Client:  models.Client{Name: "Paul"},
				Account: models.Account{Name: "Acme"},
			},
		},
		{
			Feedback: models.Feedback{
				Date:    utcDate(2023, time.February, 10),
				Answers: models.FeedbackAnswers{Grade: 6.5},
			},
			Employee: models.Employee{Name: "Bob"},
		},
	}
	lister := &fakeFeedbackLister{feedbacks: feedbacks}
	svc := NewExportService(&fakeExportEmployees{}, lister, nil, ";", zap.NewNop())

	file, err := svc.FeedbacksExport(context.Background(), utcDate(2023, time.February, 1), utcDate(2023, time.July, 31))
	require.NoError(t, err)

	assert.Equal(t, "feedbacks-export.csv", file.Filename)
	assert.Equal(t, models.FeedbackSort("-date"), lister.lastSort)
	require.NotNil(t, lister.lastFilter.DateUntil)
	assert.Equal(t, 23, lister.lastFilter.DateUntil.Hour())

	lines := strings.Split(string(file.Content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Hubvisor;NPS;Compte;Interlocuteur;HOT;Date du feedback", lines[0])
	assert.Equal(t, "Alice;9;Acme;Paul;Marc Dubois;05/03/2023", lines[1])
	// Missing relations render as a single space, not an empty cell.
	assert.Equal(t, "Bob;6.5; ; ; ;10/02/2023", lines[2])
}
