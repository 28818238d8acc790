package service

import (
	"context"
	"io"

	"billboardwatch/pkg/types"
)

// UserStore persists user identities. Implemented by store.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *types.User) error
	ByID(ctx context.Context, userID string) (*types.User, error)
	ByEmail(ctx context.Context, email string) (*types.User, error)
	ByIDs(ctx context.Context, userIDs []string) ([]*types.User, error)
}

// ReportStore persists reports and their status transitions. Implemented by
// store.ReportRepository.
type ReportStore interface {
	Create(ctx context.Context, report *types.Report) error
	Report(ctx context.Context, reportID string) (*types.Report, error)
	Reports(ctx context.Context) ([]*types.Report, error)
	ReportsByReporter(ctx context.Context, reporterID string) ([]*types.Report, error)
	UpdateStatus(ctx context.Context, reportID string, status types.ReportStatus, notes, verifiedBy string) (*types.Report, error)
	Delete(ctx context.Context, reportID string, status types.ReportStatus, reporterID string) (bool, error)
}

// ImageStore is the image ingest collaborator: upload yields a public URL and
// an opaque deletion handle. Implemented by storage.S3ImageStore.
type ImageStore interface {
	Upload(ctx context.Context, fileName, contentType string, body io.Reader) (url, handle string, err error)
	Delete(ctx context.Context, handle string) error
}
