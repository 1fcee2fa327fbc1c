// Package plans ingests monthly plan sheets and reports plan completion.
package plans

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
	"ledger-reports/internal/models"
)

// PlanRow is one line of an uploaded plan sheet. Row is the 1-based sheet
// row, used in error messages.
type PlanRow struct {
	Row    int
	Period time.Time
	Label  string
	Sum    float64
}

type Store interface {
	PlanExists(ctx context.Context, period time.Time, categoryID uint) (bool, error)
	InsertPlans(ctx context.Context, plans []models.Plan) error
}

type Ingestor struct {
	store   Store
	catalog *ledger.Catalog
	labels  ledger.LabelMap
	logger  *logrus.Logger
}

func NewIngestor(store Store, catalog *ledger.Catalog, labels ledger.LabelMap, logger *logrus.Logger) *Ingestor {
	return &Ingestor{store: store, catalog: catalog, labels: labels, logger: logger}
}

type planKey struct {
	period   time.Time
	category ledger.Category
}

// Ingest validates the whole batch and only then inserts it. Nothing is
// written when any row fails validation.
func (i *Ingestor) Ingest(ctx context.Context, rows []PlanRow) (int, error) {
	if len(rows) == 0 {
		return 0, apperr.InvalidFormat("plan sheet contains no rows")
	}

	for _, r := range rows {
		if math.IsNaN(r.Sum) || math.IsInf(r.Sum, 0) {
			return 0, apperr.InvalidFormat("row %d: invalid plan sum %v", r.Row, r.Sum)
		}
		if !ledger.IsFirstOfMonth(r.Period) {
			return 0, apperr.InvalidFormat("row %d: invalid plan month %s, use the first day of the month",
				r.Row, r.Period.Format(ledger.DateLayout))
		}
	}

	categories := make([]ledger.Category, len(rows))
	for idx, r := range rows {
		cat, ok := i.labels.Resolve(r.Label)
		if !ok {
			return 0, apperr.InvalidFormat("row %d: unknown plan category %q, expected one of %v",
				r.Row, r.Label, i.labels.Labels())
		}
		categories[idx] = cat
	}

	seen := make(map[planKey]int, len(rows))
	for idx, r := range rows {
		key := planKey{period: ledger.Day(r.Period), category: categories[idx]}
		if first, dup := seen[key]; dup {
			return 0, apperr.Conflict("rows %d and %d: plan for month %s with category '%s' appears twice",
				first, r.Row, key.period.Format(ledger.DateLayout), r.Label)
		}
		seen[key] = r.Row
	}

	for idx, r := range rows {
		period := ledger.Day(r.Period)
		exists, err := i.store.PlanExists(ctx, period, i.catalog.CategoryID(categories[idx]))
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, apperr.Conflict("plan for month %s with category '%s' already exists in the database",
				period.Format(ledger.DateLayout), r.Label)
		}
	}

	plans := make([]models.Plan, 0, len(rows))
	for idx, r := range rows {
		plans = append(plans, models.Plan{
			Period:     ledger.Day(r.Period),
			Sum:        r.Sum,
			CategoryID: i.catalog.CategoryID(categories[idx]),
		})
	}

	if err := i.store.InsertPlans(ctx, plans); err != nil {
		i.logger.WithError(err).WithField("rows", len(plans)).Error("Plan insert failed")
		return 0, err
	}

	i.logger.WithField("rows", len(plans)).Info("Plans ingested")
	return len(plans), nil
}
