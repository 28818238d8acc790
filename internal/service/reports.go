package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"billboardwatch/internal/utils"
	"billboardwatch/pkg/types"

	"github.com/sirupsen/logrus"
)

// ReportService owns the report lifecycle and its authorization rules.
type ReportService struct {
	reports ReportStore
	users   UserStore
	images  ImageStore
	logger  *logrus.Logger
}

func NewReportService(reports ReportStore, users UserStore, images ImageStore, logger *logrus.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		users:   users,
		images:  images,
		logger:  logger,
	}
}

// ImageUpload is an incoming photo attachment.
type ImageUpload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type CreateReportInput struct {
	Location         types.Location
	BillboardDetails types.BillboardDetails
	DateObserved     *time.Time
	Image            *ImageUpload
}

// Create validates the submission, ingests the image, and persists the
// report. The image upload happens first; if it fails nothing is persisted.
func (s *ReportService) Create(ctx context.Context, actor *types.User, input CreateReportInput) (*types.ReportView, error) {
	address := strings.TrimSpace(input.Location.Address)
	if address == "" {
		return nil, types.NewValidationError("Location address is required")
	}

	if imageRequired(actor) && input.Image == nil {
		return nil, types.NewValidationError("Image is required")
	}

	if strings.TrimSpace(input.BillboardDetails.Size) == "" || strings.TrimSpace(input.BillboardDetails.Type) == "" {
		return nil, types.NewValidationError("Billboard size and type are required")
	}

	report := &types.Report{
		ReporterID:    actor.ID,
		Address:       address,
		BillboardSize: strings.TrimSpace(input.BillboardDetails.Size),
		BillboardType: strings.TrimSpace(input.BillboardDetails.Type),
		Status:        types.ReportStatusPending,
		DateObserved:  time.Now(),
	}

	if input.DateObserved != nil {
		report.DateObserved = *input.DateObserved
	}

	if content := strings.TrimSpace(input.BillboardDetails.Content); content != "" {
		report.BillboardContent = utils.StringPtr(content)
	}

	if coords := input.Location.Coordinates; coords != nil {
		report.Lat = utils.Float64Ptr(coords.Lat)
		report.Lng = utils.Float64Ptr(coords.Lng)
	}

	if input.Image != nil {
		url, handle, err := s.images.Upload(ctx, input.Image.FileName, input.Image.ContentType, input.Image.Body)
		if err != nil {
			return nil, &types.UpstreamError{Op: "image upload", Err: err}
		}
		report.ImageURL = utils.StringPtr(url)
		report.ImageDeleteHandle = utils.StringPtr(handle)
	}

	if err := s.reports.Create(ctx, report); err != nil {
		// The image is already in the store; try to take it back out so a
		// failed create leaves nothing behind.
		if report.ImageDeleteHandle != nil {
			if delErr := s.images.Delete(ctx, *report.ImageDeleteHandle); delErr != nil {
				s.logger.WithError(delErr).Warn("failed to clean up image after create failure")
			}
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"reporter_id": actor.ID,
	}).Info("report created")

	view := buildView(report, actor, nil)
	return &view, nil
}

// List returns reports newest first. Public actors only ever see their own
// submissions; organization actors see everything.
func (s *ReportService) List(ctx context.Context, actor *types.User) ([]types.ReportView, error) {
	var (
		reports []*types.Report
		err     error
	)

	if actor.Role == types.UserRolePublic {
		reports, err = s.reports.ReportsByReporter(ctx, actor.ID)
	} else {
		reports, err = s.reports.Reports(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return s.expand(ctx, reports)
}

// UpdateStatus transitions a report through its lifecycle. Only organization
// actors may call it, and the report is never deleted as a side effect.
func (s *ReportService) UpdateStatus(ctx context.Context, actor *types.User, reportID string, status types.ReportStatus, notes string) (*types.ReportView, error) {
	if !canUpdateStatus(actor) {
		return nil, types.ErrForbidden
	}

	if status == "" {
		return nil, types.NewValidationError("Status is required")
	}

	if !status.Valid() {
		return nil, types.NewValidationError("Status must be pending, verified, or rejected")
	}

	if strings.TrimSpace(notes) == "" {
		notes = fmt.Sprintf("Status changed to %s", status)
	}

	report, err := s.reports.UpdateStatus(ctx, reportID, status, notes, actor.ID)
	if err != nil {
		if errors.Is(err, types.ErrReportNotFound) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": reportID,
		"status":    status,
		"actor_id":  actor.ID,
	}).Info("report status updated")

	views, err := s.expand(ctx, []*types.Report{report})
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}

// Delete removes a pending report. The store delete carries the status and
// ownership predicates, so a report verified between the policy check and the
// delete survives.
func (s *ReportService) Delete(ctx context.Context, actor *types.User, reportID string) error {
	report, err := s.reports.Report(ctx, reportID)
	if err != nil {
		if errors.Is(err, types.ErrReportNotFound) {
			return types.ErrReportNotFound
		}
		return fmt.Errorf("failed to fetch report: %w", err)
	}

	if !canDelete(actor, report) {
		return types.ErrForbidden
	}

	ownerConstraint := ""
	if actor.Role == types.UserRolePublic {
		ownerConstraint = actor.ID
	}

	deleted, err := s.reports.Delete(ctx, reportID, types.ReportStatusPending, ownerConstraint)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if !deleted {
		// The report moved out of pending between the read and the delete.
		return types.ErrForbidden
	}

	// Best-effort cleanup; the report is already gone and stays gone.
	if report.ImageDeleteHandle != nil {
		if err := s.images.Delete(ctx, *report.ImageDeleteHandle); err != nil {
			s.logger.WithError(err).WithField("report_id", reportID).Warn("failed to delete report image")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": reportID,
		"actor_id":  actor.ID,
	}).Info("report deleted")

	return nil
}

// expand resolves reporter and verifier references to display fields with a
// single bulk user lookup.
func (s *ReportService) expand(ctx context.Context, reports []*types.Report) ([]types.ReportView, error) {
	idSet := make(map[string]struct{}, len(reports))
	for _, report := range reports {
		idSet[report.ReporterID] = struct{}{}
		if report.VerifiedBy != nil {
			idSet[*report.VerifiedBy] = struct{}{}
		}
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand report users: %w", err)
	}

	byID := make(map[string]*types.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	views := make([]types.ReportView, 0, len(reports))
	for _, report := range reports {
		var verifier *types.User
		if report.VerifiedBy != nil {
			verifier = byID[*report.VerifiedBy]
		}
		views = append(views, buildView(report, byID[report.ReporterID], verifier))
	}

	return views, nil
}

func buildView(report *types.Report, reporter, verifier *types.User) types.ReportView {
	view := types.ReportView{
		ID: report.ID,
		Location: types.Location{
			Address: report.Address,
		},
		BillboardDetails: types.BillboardDetails{
			Size:    report.BillboardSize,
			Type:    report.BillboardType,
			Content: utils.PtrString(report.BillboardContent),
		},
		ImageURL:          utils.PtrString(report.ImageURL),
		DateObserved:      report.DateObserved,
		DateReported:      report.DateReported,
		Status:            report.Status,
		VerificationNotes: utils.PtrString(report.VerificationNotes),
	}

	view.Reporter.ID = report.ReporterID
	if reporter != nil {
		view.Reporter.Name = reporter.Name
		view.Reporter.Email = reporter.Email
	}

	if report.Lat != nil && report.Lng != nil {
		view.Location.Coordinates = &types.Coordinates{
			Lat: *report.Lat,
			Lng: *report.Lng,
		}
	}

	if report.VerifiedBy != nil {
		view.VerifiedBy = &types.VerifierView{ID: *report.VerifiedBy}
		if verifier != nil {
			view.VerifiedBy.Name = verifier.Name
		}
	}

	return view
}
