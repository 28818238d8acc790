package server

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"billboardwatch/internal/service"
	"billboardwatch/internal/token"
	"billboardwatch/internal/utils"
	"billboardwatch/pkg/types"

	"github.com/sirupsen/logrus"
)

const testSecret = "handler-test-secret"

type memUserStore struct {
	users map[string]*types.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*types.User{}}
}

func (m *memUserStore) Create(_ context.Context, user *types.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return nil
}

func (m *memUserStore) ByID(_ context.Context, userID string) (*types.User, error) {
	if user, ok := m.users[userID]; ok {
		return user, nil
	}
	return nil, types.ErrUserNotFound
}

func (m *memUserStore) ByEmail(_ context.Context, email string) (*types.User, error) {
	for _, user := range m.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (m *memUserStore) ByIDs(_ context.Context, userIDs []string) ([]*types.User, error) {
	out := make([]*types.User, 0, len(userIDs))
	for _, id := range userIDs {
		if user, ok := m.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type memReportStore struct {
	seq     int
	reports map[string]*types.Report
}

func newMemReportStore() *memReportStore {
	return &memReportStore{reports: map[string]*types.Report{}}
}

func (m *memReportStore) Create(_ context.Context, report *types.Report) error {
	m.seq++
	report.ID = fmt.Sprintf("rep-%d", m.seq)
	report.DateReported = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	copied := *report
	m.reports[report.ID] = &copied
	return nil
}

func (m *memReportStore) Report(_ context.Context, reportID string) (*types.Report, error) {
	if report, ok := m.reports[reportID]; ok {
		copied := *report
		return &copied, nil
	}
	return nil, types.ErrReportNotFound
}

func (m *memReportStore) Reports(_ context.Context) ([]*types.Report, error) {
	out := make([]*types.Report, 0, len(m.reports))
	for _, report := range m.reports {
		copied := *report
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateReported.After(out[j].DateReported) })
	return out, nil
}

func (m *memReportStore) ReportsByReporter(ctx context.Context, reporterID string) ([]*types.Report, error) {
	all, _ := m.Reports(ctx)
	out := make([]*types.Report, 0, len(all))
	for _, report := range all {
		if report.ReporterID == reporterID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (m *memReportStore) UpdateStatus(_ context.Context, reportID string, status types.ReportStatus, notes, verifiedBy string) (*types.Report, error) {
	report, ok := m.reports[reportID]
	if !ok {
		return nil, types.ErrReportNotFound
	}
	report.Status = status
	report.VerificationNotes = utils.StringPtr(notes)
	report.VerifiedBy = utils.StringPtr(verifiedBy)
	copied := *report
	return &copied, nil
}

func (m *memReportStore) Delete(_ context.Context, reportID string, status types.ReportStatus, reporterID string) (bool, error) {
	report, ok := m.reports[reportID]
	if !ok {
		return false, nil
	}
	if report.Status != status {
		return false, nil
	}
	if reporterID != "" && report.ReporterID != reporterID {
		return false, nil
	}
	delete(m.reports, reportID)
	return true, nil
}

type fakeImageStore struct {
	uploads int
	deleted []string
}

func (f *fakeImageStore) Upload(_ context.Context, fileName, _ string, body io.Reader) (string, string, error) {
	_, _ = io.Copy(io.Discard, body)
	f.uploads++
	handle := fmt.Sprintf("billboard-reports/img-%d", f.uploads)
	return "https://images.example.com/" + handle, handle, nil
}

func (f *fakeImageStore) Delete(_ context.Context, handle string) error {
	f.deleted = append(f.deleted, handle)
	return nil
}

type testEnv struct {
	svc     *Service
	users   *memUserStore
	reports *memReportStore
	images  *fakeImageStore
	issuer  *token.Issuer
}

func newTestEnv() (*testEnv, error) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		Environment:    "test",
		ServerPort:     0,
		AllowedOrigins: "http://localhost:3000",
	}

	users := newMemUserStore()
	reports := newMemReportStore()
	images := &fakeImageStore{}
	issuer := token.NewIssuer(testSecret, time.Hour)

	authSvc := service.NewAuthService(users, issuer, logger)
	reportSvc := service.NewReportService(reports, users, images, logger)

	svc, err := New(config, logger, authSvc, reportSvc)
	if err != nil {
		return nil, err
	}

	return &testEnv{
		svc:     svc,
		users:   users,
		reports: reports,
		images:  images,
		issuer:  issuer,
	}, nil
}
