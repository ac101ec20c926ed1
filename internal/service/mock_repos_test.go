package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prasanthzodiac/College-connect-sub001/internal/model"
	"github.com/prasanthzodiac/College-connect-sub001/internal/reference"
	"github.com/prasanthzodiac/College-connect-sub001/internal/repository"
	pkgerrors "github.com/prasanthzodiac/College-connect-sub001/pkg/errors"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/mailer"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
	"github.com/prasanthzodiac/College-connect-sub001/pkg/realtime"
)

var testScheme = reference.NewScheme("college.edu", "SUBJ-")

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu            sync.Mutex
	users         map[string]*model.User
	listByIDCalls int
	createCalls   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) put(u *model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.UserID == "" {
		u.UserID = model.NewID()
	}
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.put(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listByIDCalls++
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) FindOrCreate(_ context.Context, user *model.User) (*model.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			cp := *u
			return &cp, false, nil
		}
	}
	if _, taken := m.users[user.UserID]; taken || user.UserID == "" {
		user.UserID = model.NewID()
	}
	m.createCalls++
	stored := *user
	m.users[user.UserID] = &stored
	return user, true, nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Keyword)) &&
			!strings.Contains(u.Email, strings.ToLower(filter.Keyword)) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects      map[string]*model.Subject
	listByIDCalls int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = model.NewID()
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListByIDs(_ context.Context, ids []string) ([]model.Subject, error) {
	m.listByIDCalls++
	var result []model.Subject
	for _, id := range ids {
		if s, ok := m.subjects[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Subject, int64, error) {
	var all []model.Subject
	for _, s := range m.subjects {
		if keyword != "" && !strings.Contains(strings.ToLower(s.Code), strings.ToLower(keyword)) {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code+all[i].Section < all[j].Code+all[j].Section })
	return all, int64(len(all)), nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.subjects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.subjects, id)
	return nil
}

// ── Mock MarkRepository ──

type mockMarkRepo struct {
	marks map[string]*model.Mark
}

func newMockMarkRepo() *mockMarkRepo {
	return &mockMarkRepo{marks: make(map[string]*model.Mark)}
}

func (m *mockMarkRepo) Upsert(_ context.Context, mark *model.Mark) (*model.Mark, error) {
	for _, existing := range m.marks {
		if existing.StudentID == mark.StudentID && existing.SubjectID == mark.SubjectID && existing.Assessment == mark.Assessment {
			existing.Score, existing.MaxScore, existing.Remarks, existing.RecordedBy = mark.Score, mark.MaxScore, mark.Remarks, mark.RecordedBy
			existing.Version++
			cp := *existing
			return &cp, nil
		}
	}
	if mark.MarkID == "" {
		mark.MarkID = model.NewID()
	}
	stored := *mark
	m.marks[mark.MarkID] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockMarkRepo) GetByID(_ context.Context, id string) (*model.Mark, error) {
	if mk, ok := m.marks[id]; ok {
		cp := *mk
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMarkRepo) match(filter repository.MarkFilter) []model.Mark {
	var result []model.Mark
	for _, mk := range m.marks {
		if filter.StudentID != "" && mk.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && mk.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Assessment != "" && mk.Assessment != filter.Assessment {
			continue
		}
		result = append(result, *mk)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MarkID < result[j].MarkID })
	return result
}

func (m *mockMarkRepo) List(_ context.Context, filter repository.MarkFilter, _, _ int) ([]model.Mark, int64, error) {
	result := m.match(filter)
	return result, int64(len(result)), nil
}

func (m *mockMarkRepo) ListAll(_ context.Context, filter repository.MarkFilter) ([]model.Mark, error) {
	return m.match(filter), nil
}

func (m *mockMarkRepo) Update(_ context.Context, mark *model.Mark) error {
	existing, ok := m.marks[mark.MarkID]
	if !ok || existing.Version != mark.Version {
		return pkgerrors.ErrOptimisticLock
	}
	mark.Version++
	stored := *mark
	m.marks[mark.MarkID] = &stored
	return nil
}

func (m *mockMarkRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.marks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.marks, id)
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []model.Attendance
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, rec *model.Attendance) error {
	for i := range m.records {
		r := &m.records[i]
		if r.StudentID == rec.StudentID && r.SubjectID == rec.SubjectID && r.Date.Equal(rec.Date) {
			r.Status, r.RecordedBy = rec.Status, rec.RecordedBy
			*rec = *r
			return nil
		}
	}
	if rec.AttendanceID == "" {
		rec.AttendanceID = model.NewID()
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockAttendanceRepo) List(_ context.Context, filter repository.AttendanceFilter, _, _ int) ([]model.Attendance, int64, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && r.SubjectID != filter.SubjectID {
			continue
		}
		result = append(result, r)
	}
	return result, int64(len(result)), nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.Attendance, error) {
	var result []model.Attendance
	for _, r := range m.records {
		if r.StudentID == studentID {
			result = append(result, r)
		}
	}
	return result, nil
}

// ── Mock LeaveRepository ──

type mockLeaveRepo struct {
	leaves map[string]*model.Leave
}

func newMockLeaveRepo() *mockLeaveRepo {
	return &mockLeaveRepo{leaves: make(map[string]*model.Leave)}
}

func (m *mockLeaveRepo) Create(_ context.Context, leave *model.Leave) error {
	if leave.LeaveID == "" {
		leave.LeaveID = model.NewID()
	}
	stored := *leave
	m.leaves[leave.LeaveID] = &stored
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id string) (*model.Leave, error) {
	if l, ok := m.leaves[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRepo) ListByStudent(_ context.Context, studentID, status string) ([]model.Leave, error) {
	var result []model.Leave
	for _, l := range m.leaves {
		if l.StudentID == studentID && (status == "" || l.Status == status) {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLeaveRepo) List(_ context.Context, status string, _, _ int) ([]model.Leave, int64, error) {
	var result []model.Leave
	for _, l := range m.leaves {
		if status == "" || l.Status == status {
			result = append(result, *l)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockLeaveRepo) Review(_ context.Context, leave *model.Leave) error {
	existing, ok := m.leaves[leave.LeaveID]
	if !ok || existing.Status != model.LeavePending {
		return pkgerrors.ErrOptimisticLock
	}
	stored := *leave
	m.leaves[leave.LeaveID] = &stored
	return nil
}

// ── Mock GrievanceRepository ──

type mockGrievanceRepo struct {
	grievances map[string]*model.Grievance
}

func newMockGrievanceRepo() *mockGrievanceRepo {
	return &mockGrievanceRepo{grievances: make(map[string]*model.Grievance)}
}

func (m *mockGrievanceRepo) Create(_ context.Context, g *model.Grievance) error {
	if g.GrievanceID == "" {
		g.GrievanceID = model.NewID()
	}
	stored := *g
	m.grievances[g.GrievanceID] = &stored
	return nil
}

func (m *mockGrievanceRepo) GetByID(_ context.Context, id string) (*model.Grievance, error) {
	if g, ok := m.grievances[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGrievanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.Grievance, error) {
	var result []model.Grievance
	for _, g := range m.grievances {
		if g.StudentID == studentID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGrievanceRepo) List(_ context.Context, status string, _, _ int) ([]model.Grievance, int64, error) {
	var result []model.Grievance
	for _, g := range m.grievances {
		if status == "" || g.Status == status {
			result = append(result, *g)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockGrievanceRepo) Update(_ context.Context, g *model.Grievance) error {
	stored := *g
	m.grievances[g.GrievanceID] = &stored
	return nil
}

// ── Mock CertificateRepository ──

type mockCertificateRepo struct {
	certificates map[string]*model.Certificate
}

func newMockCertificateRepo() *mockCertificateRepo {
	return &mockCertificateRepo{certificates: make(map[string]*model.Certificate)}
}

func (m *mockCertificateRepo) Create(_ context.Context, c *model.Certificate) error {
	if c.CertificateID == "" {
		c.CertificateID = model.NewID()
	}
	stored := *c
	m.certificates[c.CertificateID] = &stored
	return nil
}

func (m *mockCertificateRepo) GetByID(_ context.Context, id string) (*model.Certificate, error) {
	if c, ok := m.certificates[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCertificateRepo) ListByStudent(_ context.Context, studentID string) ([]model.Certificate, error) {
	var result []model.Certificate
	for _, c := range m.certificates {
		if c.StudentID == studentID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCertificateRepo) List(_ context.Context, status string, _, _ int) ([]model.Certificate, int64, error) {
	var result []model.Certificate
	for _, c := range m.certificates {
		if status == "" || c.Status == status {
			result = append(result, *c)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockCertificateRepo) Decide(_ context.Context, c *model.Certificate) error {
	existing, ok := m.certificates[c.CertificateID]
	if !ok || existing.Status != model.CertificateRequested {
		return pkgerrors.ErrOptimisticLock
	}
	stored := *c
	m.certificates[c.CertificateID] = &stored
	return nil
}

// ── Fakes ──

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, ev realtime.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

// ── test fixture ──

type testEnv struct {
	users        *mockUserRepo
	subjects     *mockSubjectRepo
	marks        *mockMarkRepo
	attendance   *mockAttendanceRepo
	leaves       *mockLeaveRepo
	grievances   *mockGrievanceRepo
	certificates *mockCertificateRepo
	repo         *repository.Repository
	metrics      *metrics.Metrics
	broadcaster  *fakeBroadcaster
	mailer       *fakeMailer
	logger       *zap.Logger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:        newMockUserRepo(),
		subjects:     newMockSubjectRepo(),
		marks:        newMockMarkRepo(),
		attendance:   &mockAttendanceRepo{},
		leaves:       newMockLeaveRepo(),
		grievances:   newMockGrievanceRepo(),
		certificates: newMockCertificateRepo(),
		metrics:      metrics.New("test"),
		broadcaster:  &fakeBroadcaster{},
		mailer:       &fakeMailer{},
		logger:       zap.NewNop(),
	}
	env.repo = &repository.Repository{
		User:        env.users,
		Subject:     env.subjects,
		Mark:        env.marks,
		Attendance:  env.attendance,
		Leave:       env.leaves,
		Grievance:   env.grievances,
		Certificate: env.certificates,
	}
	return env
}

func (e *testEnv) directory() UserDirectory {
	return NewUserDirectory(e.repo, e.metrics, e.logger)
}

func (e *testEnv) resolver() ReferenceResolver {
	return NewReferenceResolver(e.repo, testScheme, e.metrics, e.logger)
}

func (e *testEnv) enricher() Enricher {
	return NewEnricher(e.repo, testScheme, e.logger)
}

func (e *testEnv) addUser(id, email, role string) *model.User {
	return e.users.put(&model.User{UserID: id, Email: email, Name: displayName(reference.LocalPart(email)), Role: role})
}

func (e *testEnv) addSubject(id, code, section string) *model.Subject {
	s := &model.Subject{SubjectID: id, Code: code, Name: "Subject " + code, Section: section}
	_ = e.subjects.Create(context.Background(), s)
	return s
}
