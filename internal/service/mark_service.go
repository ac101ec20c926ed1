package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
)

// ── mark errors ──

var (
	ErrMarkNotFound       = errors.New("mark not found")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and the maximum score")
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

const defaultMaxScore = 100

// MarkService assessment marks.
type MarkService interface {
	Record(ctx context.Context, req *dto.RecordMarkRequest, callerID string) (*dto.MarkResponse, error)
	RecordBulk(ctx context.Context, req *dto.BulkMarkRequest, callerID string) (*dto.BatchResponse, error)
	List(ctx context.Context, req *dto.MarkListRequest) ([]dto.MarkResponse, int64, error)
	ListMine(ctx context.Context, studentID string) ([]dto.MarkResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateMarkRequest, callerID string) (*dto.MarkResponse, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, req *dto.MarkListRequest) (*bytes.Buffer, string, error)
}

type markService struct {
	marks    repository.MarkRepository
	resolver ReferenceResolver
	enricher Enricher
	logger   *zap.Logger
}

// NewMarkService creates a MarkService.
func NewMarkService(repo *repository.Repository, resolver ReferenceResolver, enricher Enricher, logger *zap.Logger) MarkService {
	return &markService{marks: repo.Mark, resolver: resolver, enricher: enricher, logger: logger}
}

// ────────────────────── Record ──────────────────────

func (s *markService) Record(ctx context.Context, req *dto.RecordMarkRequest, callerID string) (*dto.MarkResponse, error) {
	student, err := s.resolver.ResolveStudent(ctx, req.Student)
	if err != nil {
		return nil, err
	}
	if _, err := requireStudent(student); err != nil {
		return nil, err
	}
	subject, err := s.resolver.ResolveSubject(ctx, req.Subject)
	if err != nil {
		return nil, err
	}

	maxScore := req.MaxScore
	if maxScore == 0 {
		maxScore = defaultMaxScore
	}
	if req.Score > maxScore {
		return nil, ErrScoreOutOfRange
	}

	stored, err := s.marks.Upsert(ctx, &model.Mark{
		StudentID:      student.UserID,
		SubjectID:      subject.SubjectID,
		Assessment:     req.Assessment,
		Score:          req.Score,
		MaxScore:       maxScore,
		Remarks:        req.Remarks,
		RecordedBy:     callerID,
		VersionedModel: model.VersionedModel{Version: 1},
	})
	if err != nil {
		s.logger.Error("record mark failed", zap.String("student_id", student.UserID), zap.Error(err))
		return nil, err
	}

	list, err := s.toResponses(ctx, []model.Mark{*stored})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ────────────────────── RecordBulk ──────────────────────

func (s *markService) RecordBulk(ctx context.Context, req *dto.BulkMarkRequest, callerID string) (*dto.BatchResponse, error) {
	subject, err := s.resolver.ResolveSubject(ctx, req.Subject)
	if err != nil {
		return nil, err
	}
	maxScore := req.MaxScore
	if maxScore == 0 {
		maxScore = defaultMaxScore
	}

	resp := &dto.BatchResponse{Results: make([]dto.RowResult, 0, len(req.Rows))}
	for i, row := range req.Rows {
		result := dto.RowResult{Row: i + 1, Student: row.Student}

		student, err := s.resolver.ResolveStudent(ctx, row.Student)
		if err == nil {
			student, err = requireStudent(student)
		}
		if err == nil && row.Score > maxScore {
			err = ErrScoreOutOfRange
		}
		if err != nil {
			if !isRowError(err) {
				return nil, err
			}
			result.Reason, result.Error = rowReason(err), err.Error()
			resp.Failed++
			resp.Results = append(resp.Results, result)
			continue
		}

		stored, err := s.marks.Upsert(ctx, &model.Mark{
			StudentID:      student.UserID,
			SubjectID:      subject.SubjectID,
			Assessment:     req.Assessment,
			Score:          row.Score,
			MaxScore:       maxScore,
			Remarks:        row.Remarks,
			RecordedBy:     callerID,
			VersionedModel: model.VersionedModel{Version: 1},
		})
		if err != nil {
			s.logger.Error("bulk mark upsert failed", zap.Int("row", i+1), zap.Error(err))
			return nil, err
		}
		result.ID = stored.MarkID
		resp.Stored++
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("bulk marks recorded",
		zap.String("subject_id", subject.SubjectID),
		zap.String("assessment", req.Assessment),
		zap.Int("stored", resp.Stored),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *markService) List(ctx context.Context, req *dto.MarkListRequest) ([]dto.MarkResponse, int64, error) {
	filter, err := s.resolveFilter(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	marks, total, err := s.marks.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list marks failed", zap.Error(err))
		return nil, 0, err
	}
	result, err := s.toResponses(ctx, marks)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *markService) ListMine(ctx context.Context, studentID string) ([]dto.MarkResponse, error) {
	marks, err := s.marks.ListAll(ctx, repository.MarkFilter{StudentID: studentID})
	if err != nil {
		s.logger.Error("list own marks failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, marks)
}

// ────────────────────── Update / Delete ──────────────────────

func (s *markService) Update(ctx context.Context, id string, req *dto.UpdateMarkRequest, callerID string) (*dto.MarkResponse, error) {
	mark, err := s.marks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarkNotFound
		}
		s.logger.Error("get mark failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Score != nil {
		mark.Score = *req.Score
	}
	if req.MaxScore != nil {
		mark.MaxScore = *req.MaxScore
	}
	if req.Remarks != nil {
		mark.Remarks = *req.Remarks
	}
	if mark.Score > mark.MaxScore {
		return nil, ErrScoreOutOfRange
	}
	mark.RecordedBy = callerID
	// the caller's view decides the lock, not the row just read
	mark.Version = req.Version

	if err := s.marks.Update(ctx, mark); err != nil {
		return nil, err
	}

	list, err := s.toResponses(ctx, []model.Mark{*mark})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *markService) Delete(ctx context.Context, id string) error {
	if err := s.marks.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMarkNotFound
		}
		s.logger.Error("delete mark failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Export ──────────────────────

func (s *markService) Export(ctx context.Context, req *dto.MarkListRequest) (*bytes.Buffer, string, error) {
	filter, err := s.resolveFilter(ctx, req)
	if err != nil {
		return nil, "", err
	}
	marks, err := s.marks.ListAll(ctx, filter)
	if err != nil {
		s.logger.Error("list marks for export failed", zap.Error(err))
		return nil, "", err
	}
	rows, err := s.toResponses(ctx, marks)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Marks"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Roll No", "Student", "Email", "Subject Code", "Subject", "Section", "Assessment", "Score", "Max Score", "Remarks", "Recorded By", "Updated At"}
	widths := []float64{10, 24, 30, 14, 28, 10, 16, 10, 10, 30, 24, 22}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, m := range rows {
		row := i + 2
		values := make([]interface{}, len(headers))
		if m.Student != nil {
			values[0], values[1], values[2] = m.Student.RollNumber, m.Student.Name, m.Student.Email
		}
		if m.Subject != nil {
			values[3], values[4], values[5] = m.Subject.Code, m.Subject.Name, m.Subject.Section
		}
		values[6], values[7], values[8], values[9] = m.Assessment, m.Score, m.MaxScore, m.Remarks
		if m.RecordedBy != nil {
			values[10] = m.RecordedBy.Name
		}
		values[11] = m.UpdatedAt
		for c, v := range values {
			if v == nil {
				continue
			}
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("marks_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	return buf, filename, nil
}

// ── helpers ──

func (s *markService) resolveFilter(ctx context.Context, req *dto.MarkListRequest) (repository.MarkFilter, error) {
	filter := repository.MarkFilter{Assessment: req.Assessment}
	if req.Subject != "" {
		subject, err := s.resolver.ResolveSubject(ctx, req.Subject)
		if err != nil {
			return filter, err
		}
		filter.SubjectID = subject.SubjectID
	}
	if req.Student != "" {
		student, err := s.resolver.ResolveStudent(ctx, req.Student)
		if err != nil {
			return filter, err
		}
		filter.StudentID = student.UserID
	}
	return filter, nil
}

func (s *markService) toResponses(ctx context.Context, marks []model.Mark) ([]dto.MarkResponse, error) {
	keys := make([]RelationKeys, len(marks))
	for i, m := range marks {
		keys[i] = RelationKeys{SubjectID: m.SubjectID, StudentID: m.StudentID, RecordedBy: m.RecordedBy}
	}
	relations, err := s.enricher.Attach(ctx, keys)
	if err != nil {
		return nil, err
	}

	result := make([]dto.MarkResponse, len(marks))
	for i, m := range marks {
		result[i] = dto.MarkResponse{
			ID:         m.MarkID,
			Assessment: m.Assessment,
			Score:      m.Score,
			MaxScore:   m.MaxScore,
			Remarks:    m.Remarks,
			Version:    m.Version,
			UpdatedAt:  formatTime(m.UpdatedAt),
			Relations:  relations[i],
		}
	}
	return result, nil
}

// isRowError reports whether err fails one row of a batch rather than the whole batch.
func isRowError(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrNotAStudent) ||
		errors.Is(err, ErrScoreOutOfRange)
}

func rowReason(err error) string {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		return "student_not_found"
	case errors.Is(err, ErrNotAStudent):
		return "not_a_student"
	case errors.Is(err, ErrScoreOutOfRange):
		return "score_out_of_range"
	default:
		return "error"
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
