package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/internal/dto"
	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
)

// RelationKeys foreign keys of one record. Empty keys are skipped.
type RelationKeys struct {
	SubjectID  string
	StudentID  string
	RecordedBy string
}

// Enricher attaches subject, student and staff summaries to batches of records.
type Enricher interface {
	// Attach returns one Relations per input, in input order. It issues at most one
	// query per relation kind regardless of batch size.
	Attach(ctx context.Context, keys []RelationKeys) ([]dto.Relations, error)
}

type enricher struct {
	users    repository.UserRepository
	subjects repository.SubjectRepository
	scheme   reference.Scheme
	logger   *zap.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(repo *repository.Repository, scheme reference.Scheme, logger *zap.Logger) Enricher {
	return &enricher{users: repo.User, subjects: repo.Subject, scheme: scheme, logger: logger}
}

func (e *enricher) Attach(ctx context.Context, keys []RelationKeys) ([]dto.Relations, error) {
	out := make([]dto.Relations, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	subjectIDs := newIDSet()
	studentIDs := newIDSet()
	staffIDs := newIDSet()
	for _, k := range keys {
		subjectIDs.add(k.SubjectID)
		studentIDs.add(k.StudentID)
		staffIDs.add(k.RecordedBy)
	}

	subjects := make(map[string]*dto.SubjectSummary, len(subjectIDs.ids))
	if len(subjectIDs.ids) > 0 {
		rows, err := e.subjects.ListByIDs(ctx, subjectIDs.ids)
		if err != nil {
			e.logger.Error("load subjects for enrichment failed", zap.Error(err))
			return nil, err
		}
		for i := range rows {
			subjects[rows[i].SubjectID] = toSubjectSummary(&rows[i])
		}
	}

	students := make(map[string]*dto.StudentSummary, len(studentIDs.ids))
	if len(studentIDs.ids) > 0 {
		rows, err := e.users.ListByIDs(ctx, studentIDs.ids)
		if err != nil {
			e.logger.Error("load students for enrichment failed", zap.Error(err))
			return nil, err
		}
		for i := range rows {
			students[rows[i].UserID] = toStudentSummary(&rows[i], e.scheme)
		}
	}

	staff := make(map[string]*dto.StaffSummary, len(staffIDs.ids))
	if len(staffIDs.ids) > 0 {
		rows, err := e.users.ListByIDs(ctx, staffIDs.ids)
		if err != nil {
			e.logger.Error("load staff for enrichment failed", zap.Error(err))
			return nil, err
		}
		for i := range rows {
			staff[rows[i].UserID] = toStaffSummary(&rows[i])
		}
	}

	for i, k := range keys {
		out[i] = dto.Relations{
			Subject:    subjects[k.SubjectID],
			Student:    students[k.StudentID],
			RecordedBy: staff[k.RecordedBy],
		}
	}
	return out, nil
}

// idSet keeps first-seen order so queries are deterministic.
type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// ── summaries ──

func toSubjectSummary(s *model.Subject) *dto.SubjectSummary {
	return &dto.SubjectSummary{ID: s.SubjectID, Code: s.Code, Name: s.Name, Section: s.Section}
}

func toStudentSummary(u *model.User, scheme reference.Scheme) *dto.StudentSummary {
	return &dto.StudentSummary{
		ID:         u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		RollNumber: scheme.EmailToRoll(u.Email),
	}
}

func toStaffSummary(u *model.User) *dto.StaffSummary {
	return &dto.StaffSummary{ID: u.UserID, Name: u.Name, Email: u.Email}
}
