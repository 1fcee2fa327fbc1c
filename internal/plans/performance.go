package plans

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
	"ledger-reports/internal/models"
)

// ActualsStore serves the plans of a month and the actual sums to compare
// them with. Date windows are inclusive on both ends.
type ActualsStore interface {
	PlansForMonth(ctx context.Context, month ledger.Month) ([]models.Plan, error)
	SumCreditBody(ctx context.Context, from, to time.Time) (float64, error)
	SumPayments(ctx context.Context, from, to time.Time) (float64, error)
}

type PlanPerformance struct {
	Month             string  `json:"month"`
	Category          string  `json:"category"`
	PlanAmount        float64 `json:"plan_amount"`
	TotalAmount       float64 `json:"total_amount"`
	CompletionPercent float64 `json:"completion_percent"`
}

type Performance struct {
	store   ActualsStore
	catalog *ledger.Catalog
	logger  *logrus.Logger
}

func NewPerformance(store ActualsStore, catalog *ledger.Catalog, logger *logrus.Logger) *Performance {
	return &Performance{store: store, catalog: catalog, logger: logger}
}

// Report compares each plan of target's month with the actuals from the
// first of that month up to and including target.
func (p *Performance) Report(ctx context.Context, target time.Time) ([]PlanPerformance, error) {
	month := ledger.MonthOf(target)

	plans, err := p.store.PlansForMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, apperr.NotFound("no plans found for %s", month)
	}

	from, to := month.First(), ledger.Day(target)
	actuals := make(map[ledger.Category]decimal.Decimal, len(ledger.Categories))

	report := make([]PlanPerformance, 0, len(plans))
	for _, plan := range plans {
		cat, ok := p.catalog.CategoryByID(plan.CategoryID)
		if !ok {
			p.logger.WithFields(logrus.Fields{
				"plan_id":     plan.ID,
				"category_id": plan.CategoryID,
			}).Warn("Plan has a category outside the catalog, skipping")
			continue
		}

		actual, ok := actuals[cat]
		if !ok {
			actual, err = p.actual(ctx, cat, from, to)
			if err != nil {
				return nil, err
			}
			actuals[cat] = actual
		}

		planned := ledger.Amount(plan.Sum)
		report = append(report, PlanPerformance{
			Month:             plan.Period.Format(ledger.DateLayout),
			Category:          p.catalog.CategoryName(cat),
			PlanAmount:        plan.Sum,
			TotalAmount:       ledger.Round2(actual),
			CompletionPercent: ledger.Round2(ledger.Percent(actual, planned)),
		})
	}

	if len(report) == 0 {
		return nil, apperr.NotFound("no plans with a known category found for %s", month)
	}

	p.logger.WithFields(logrus.Fields{
		"month": month.String(),
		"plans": len(report),
	}).Debug("Plan performance calculated")

	return report, nil
}

func (p *Performance) actual(ctx context.Context, cat ledger.Category, from, to time.Time) (decimal.Decimal, error) {
	var (
		sum float64
		err error
	)
	switch cat {
	case ledger.CategoryIssuance:
		sum, err = p.store.SumCreditBody(ctx, from, to)
	case ledger.CategoryCollection:
		sum, err = p.store.SumPayments(ctx, from, to)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Amount(sum), nil
}
