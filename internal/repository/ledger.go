// Package repository is the gorm backed store behind every report.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
	"ledger-reports/internal/models"
)

const (
	insertBatchSize     = 500
	pgUniqueViolation   = "23505"
	pgForeignKeyMissing = "23503"
)

// LedgerRepository serves the credit, plan and rollup queries. The handle is
// injected per process and scoped per request through WithContext.
type LedgerRepository struct {
	db      *gorm.DB
	catalog *ledger.Catalog
	logger  *logrus.Logger
}

func NewLedgerRepository(db *gorm.DB, catalog *ledger.Catalog, logger *logrus.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, catalog: catalog, logger: logger}
}

func (r *LedgerRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperr.Storage("database handle unavailable", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Storage("database is unreachable", err)
	}
	return nil
}

// CreditTotals returns every credit of the user with its payment sums split
// by payment type. Credits without payments come back with zero sums.
func (r *LedgerRepository) CreditTotals(ctx context.Context, userID uint) ([]models.CreditTotals, error) {
	var rows []models.CreditTotals
	err := r.db.WithContext(ctx).
		Table("credits AS c").
		Select(`c.id AS credit_id,
			c.issuance_date,
			c.return_date,
			c.actual_return_date,
			c.body,
			c.percent,
			COALESCE(SUM(p.sum), 0) AS total_paid,
			COALESCE(SUM(CASE WHEN p.type_id = ? THEN p.sum END), 0) AS paid_body,
			COALESCE(SUM(CASE WHEN p.type_id = ? THEN p.sum END), 0) AS paid_percent`,
			r.catalog.PaymentTypeID(ledger.PaymentTypeBody),
			r.catalog.PaymentTypeID(ledger.PaymentTypePercent),
		).
		Joins("LEFT JOIN payments AS p ON p.credit_id = c.id").
		Where("c.user_id = ?", userID).
		Group("c.id").
		Order("c.issuance_date, c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, r.storageError("load credit history", err)
	}
	return rows, nil
}

func (r *LedgerRepository) PlanExists(ctx context.Context, period time.Time, categoryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("period = ? AND category_id = ?", ledger.Day(period), categoryID).
		Count(&count).Error
	if err != nil {
		return false, r.storageError("check existing plans", err)
	}
	return count > 0, nil
}

// InsertPlans writes the whole batch in one transaction.
func (r *LedgerRepository) InsertPlans(ctx context.Context, plans []models.Plan) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Category").CreateInBatches(&plans, insertBatchSize).Error
	})
	if err != nil {
		return r.insertError(err)
	}
	return nil
}

func (r *LedgerRepository) insertError(err error) error {
	if isUniqueViolation(err) {
		return r.storageError("insert plans (concurrent duplicate)", err)
	}
	return r.storageError("insert plans", err)
}

func (r *LedgerRepository) PlansForMonth(ctx context.Context, month ledger.Month) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("period >= ? AND period < ?", month.First(), month.Next()).
		Order("category_id, id").
		Find(&plans).Error
	if err != nil {
		return nil, r.storageError("load plans", err)
	}
	return plans, nil
}

// SumCreditBody sums principal issued in [from, to], both ends inclusive.
func (r *LedgerRepository) SumCreditBody(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Select("COALESCE(SUM(body), 0)").
		Where("issuance_date >= ? AND issuance_date < ?", ledger.Day(from), ledger.Day(to).AddDate(0, 0, 1)).
		Scan(&total).Error
	if err != nil {
		return 0, r.storageError("sum issued credits", err)
	}
	return total, nil
}

// SumPayments sums payments made in [from, to], both ends inclusive.
func (r *LedgerRepository) SumPayments(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(sum), 0)").
		Where("payment_date >= ? AND payment_date < ?", ledger.Day(from), ledger.Day(to).AddDate(0, 0, 1)).
		Scan(&total).Error
	if err != nil {
		return 0, r.storageError("sum payments", err)
	}
	return total, nil
}

func (r *LedgerRepository) MonthlyIssuance(ctx context.Context, from, to time.Time) ([]models.MonthlyAggregate, error) {
	return r.monthly(ctx, "credits", "issuance_date", "body", from, to, nil)
}

func (r *LedgerRepository) MonthlyPlans(ctx context.Context, categoryID uint, from, to time.Time) ([]models.MonthlyAggregate, error) {
	return r.monthly(ctx, "plans", "period", "sum", from, to, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("category_id = ?", categoryID)
	})
}

func (r *LedgerRepository) MonthlyPayments(ctx context.Context, from, to time.Time) ([]models.MonthlyAggregate, error) {
	return r.monthly(ctx, "payments", "payment_date", "sum", from, to, nil)
}

// monthly buckets table rows by the month of dateCol for dates in [from, to).
func (r *LedgerRepository) monthly(
	ctx context.Context,
	table, dateCol, sumCol string,
	from, to time.Time,
	scope func(*gorm.DB) *gorm.DB,
) ([]models.MonthlyAggregate, error) {
	q := r.db.WithContext(ctx).
		Table(table).
		Select("date_trunc('month', " + dateCol + ")::date AS bucket, COUNT(*) AS cnt, COALESCE(SUM(" + sumCol + "), 0) AS total").
		Where(dateCol+" >= ? AND "+dateCol+" < ?", from, to)
	if scope != nil {
		q = scope(q)
	}

	var rows []models.MonthlyAggregate
	if err := q.Group("bucket").Order("bucket").Scan(&rows).Error; err != nil {
		return nil, r.storageError("aggregate "+table+" by month", err)
	}
	return rows, nil
}

func (r *LedgerRepository) storageError(op string, err error) error {
	r.logger.WithError(err).WithField("op", op).Error("Storage query failed")
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Storage(op+": request cancelled", err)
	}
	if isForeignKeyViolation(err) {
		return apperr.Storage(op+": referenced row is missing", err)
	}
	return apperr.Storage(op+" failed", err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyMissing
}
