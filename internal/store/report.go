package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"billboardwatch/internal/utils"
	"billboardwatch/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportTableName = "billboardwatch.reports"

var reportColumns = utils.StructTagValues(types.Report{})

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) Report(ctx context.Context, reportID string) (*types.Report, error) {
	query, args, err := psql().
		Select(reportColumns...).
		From(reportTableName).
		Where(sq.Eq{"id": reportID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report query: %w", err)
	}

	var report types.Report
	err = pgxscan.Get(ctx, r.pool, &report, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	return &report, nil
}

func (r *ReportRepository) Reports(ctx context.Context) ([]*types.Report, error) {
	query, args, err := psql().
		Select(reportColumns...).
		From(reportTableName).
		OrderBy("date_reported DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reports query: %w", err)
	}

	var reports = make([]*types.Report, 0)
	err = pgxscan.Select(ctx, r.pool, &reports, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return reports, nil
}

func (r *ReportRepository) ReportsByReporter(ctx context.Context, reporterID string) ([]*types.Report, error) {
	query, args, err := psql().
		Select(reportColumns...).
		From(reportTableName).
		Where(sq.Eq{"reporter_id": reporterID}).
		OrderBy("date_reported DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reports-by-reporter query: %w", err)
	}

	var reports = make([]*types.Report, 0)
	err = pgxscan.Select(ctx, r.pool, &reports, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports by reporter: %w", err)
	}

	return reports, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *types.Report) error {

	now := time.Now()
	report.ID = utils.NanoID()
	report.DateReported = now

	reportMap := utils.StructToMap(report)

	query, args, err := psql().Insert(reportTableName).SetMap(reportMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert report query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create report")

}

// UpdateStatus performs the status transition as a single UPDATE ... RETURNING
// so two concurrent reviewers cannot produce a lost update; the last writer
// wins.
func (r *ReportRepository) UpdateStatus(ctx context.Context, reportID string, status types.ReportStatus, notes, verifiedBy string) (*types.Report, error) {

	query, args, err := psql().
		Update(reportTableName).
		Set("status", status).
		Set("verification_notes", notes).
		Set("verified_by", verifiedBy).
		Where(sq.Eq{"id": reportID}).
		Suffix("RETURNING " + strings.Join(reportColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update status query for report %s: %w", reportID, err)
	}

	var report types.Report
	err = pgxscan.Get(ctx, r.pool, &report, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	return &report, nil
}

// Delete removes the report in a single conditional DELETE. The status
// predicate keeps the operation atomic against a concurrent transition out of
// pending; reporterID, when non-empty, additionally constrains to the owner.
// Returns false when no row matched.
func (r *ReportRepository) Delete(ctx context.Context, reportID string, status types.ReportStatus, reporterID string) (bool, error) {

	predicate := sq.Eq{"id": reportID, "status": status}
	if reporterID != "" {
		predicate["reporter_id"] = reporterID
	}

	query, args, err := psql().Delete(reportTableName).Where(predicate).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate delete report query for report %s: %w", reportID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, utils.ErrorWrapOrNil(err, "failed to delete report")
	}

	return tag.RowsAffected() > 0, nil
}
