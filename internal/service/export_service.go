package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/giua-dev/scrutini-api/internal/models"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
	"github.com/giua-dev/scrutini-api/pkg/export"
)

// ExportFormat selects the result-sheet rendering.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered result sheet ready to be served.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

type exportStudentLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type exportSubjectLister interface {
	List(ctx context.Context) ([]models.Subject, error)
}

// ExportService renders session result sheets (tabellone) as CSV or PDF.
type ExportService struct {
	sessions gradeSessionReader
	outcomes sessionOutcomeLister
	grades   sessionGradeLister
	students exportStudentLister
	subjects exportSubjectLister
	classes  classReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	enabled  bool
	logger   *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(sessions gradeSessionReader, outcomes sessionOutcomeLister, grades sessionGradeLister, students exportStudentLister, subjects exportSubjectLister, classes classReader, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions: sessions,
		outcomes: outcomes,
		grades:   grades,
		students: students,
		subjects: subjects,
		classes:  classes,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		enabled:  enabled,
		logger:   logger,
	}
}

// ResultSheet renders the per-student result sheet of a closed session:
// one row per student, one column per graded subject, plus the outcome
// columns.
func (s *ExportService) ResultSheet(ctx context.Context, sessionID string, format ExportFormat) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled")
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.State != models.SessionClosed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session is not closed")
	}

	dataset, class, err := s.buildDataset(ctx, session)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Class %s - period %s", class.Label(), session.Period)
	base := fmt.Sprintf("results_%s_%s", class.Label(), session.Period)

	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(*dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{FileName: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		content, err := s.csv.Render(*dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{FileName: base + ".csv", ContentType: "text/csv", Content: content}, nil
	}
}

func (s *ExportService) buildDataset(ctx context.Context, session *models.GradingSession) (*export.Dataset, *models.Class, error) {
	class, err := s.classes.FindByID(ctx, session.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	students, err := s.students.ListByClass(ctx, session.ClassID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	outcomes, err := s.outcomes.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outcomes")
	}
	grades, err := s.grades.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	gradesByStudent := make(map[string]map[string]*int)
	gradedSubjects := make(map[string]bool)
	for _, g := range grades {
		if gradesByStudent[g.StudentID] == nil {
			gradesByStudent[g.StudentID] = make(map[string]*int)
		}
		gradesByStudent[g.StudentID][g.SubjectID] = finalMark(g.Marks)
		gradedSubjects[g.SubjectID] = true
	}
	outcomeByStudent := make(map[string]models.Outcome, len(outcomes))
	for _, o := range outcomes {
		outcomeByStudent[o.StudentID] = o
	}

	headers := []string{"Student"}
	var columns []models.Subject
	for _, subject := range subjects {
		if gradedSubjects[subject.ID] {
			columns = append(columns, subject)
			headers = append(headers, subject.Name)
		}
	}
	headers = append(headers, "Average", "Credit", "Outcome")

	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		row := map[string]string{"Student": student.LastName + " " + student.FirstName}
		for _, subject := range columns {
			if mark := gradesByStudent[student.ID][subject.ID]; mark != nil {
				row[subject.Name] = strconv.Itoa(*mark)
			}
		}
		if outcome, ok := outcomeByStudent[student.ID]; ok {
			row["Average"] = strconv.FormatFloat(outcome.Average, 'f', 2, 64)
			row["Credit"] = strconv.Itoa(outcome.Credit)
			row["Outcome"] = string(outcome.Result)
		}
		rows = append(rows, row)
	}

	return &export.Dataset{Headers: headers, Rows: rows}, class, nil
}
