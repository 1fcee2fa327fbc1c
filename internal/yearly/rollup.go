// Package yearly builds the month-by-month plan/actual table of a year.
package yearly

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
	"ledger-reports/internal/models"
)

const (
	minYear = 1
	maxYear = 9999
)

// Store returns aggregates bucketed by month for dates in [from, to).
type Store interface {
	MonthlyIssuance(ctx context.Context, from, to time.Time) ([]models.MonthlyAggregate, error)
	MonthlyPlans(ctx context.Context, categoryID uint, from, to time.Time) ([]models.MonthlyAggregate, error)
	MonthlyPayments(ctx context.Context, from, to time.Time) ([]models.MonthlyAggregate, error)
}

type MonthRow struct {
	Year                      int     `json:"year"`
	Month                     int     `json:"month"`
	NumCredits                int64   `json:"num_credits"`
	PlanSum                   float64 `json:"plan_sum"`
	SumCredits                float64 `json:"sum_credits"`
	PlanExecutionPercent      float64 `json:"plan_execution_percent"`
	NumPayments               int64   `json:"num_payments"`
	PlanCollectionSum         float64 `json:"plan_collection_sum"`
	SumPayments               float64 `json:"sum_payments"`
	PlanCollectionPercent     float64 `json:"plan_collection_percent"`
	SumCreditsPercentPerYear  float64 `json:"sum_credits_percent_per_year"`
	SumPaymentsPercentPerYear float64 `json:"sum_payments_percent_per_year"`
}

type Rollup struct {
	store   Store
	catalog *ledger.Catalog
	logger  *logrus.Logger
}

func NewRollup(store Store, catalog *ledger.Catalog, logger *logrus.Logger) *Rollup {
	return &Rollup{store: store, catalog: catalog, logger: logger}
}

// bucket is a count and sum for one month.
type bucket struct {
	count int64
	sum   decimal.Decimal
}

// merged is one month after the outer join, before rounding.
type merged struct {
	month          ledger.Month
	issuance       bucket
	planIssuance   decimal.Decimal
	planCollection decimal.Decimal
	payments       bucket
}

// Report returns one row per month of year in which credits were issued.
// Months with plans or payments but no issued credits are left out.
func (r *Rollup) Report(ctx context.Context, year int) ([]MonthRow, error) {
	if year < minYear || year > maxYear {
		return nil, apperr.InvalidArgument("invalid year %d", year)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var issuance, planIssuance, planCollection, payments []models.MonthlyAggregate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		issuance, err = r.store.MonthlyIssuance(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		planIssuance, err = r.store.MonthlyPlans(gctx, r.catalog.CategoryID(ledger.CategoryIssuance), from, to)
		return err
	})
	g.Go(func() (err error) {
		planCollection, err = r.store.MonthlyPlans(gctx, r.catalog.CategoryID(ledger.CategoryCollection), from, to)
		return err
	})
	g.Go(func() (err error) {
		payments, err = r.store.MonthlyPayments(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		r.logger.WithError(err).WithField("year", year).Error("Failed to load yearly aggregates")
		return nil, err
	}

	rows := join(year, index(issuance), index(planIssuance), index(planCollection), index(payments))

	r.logger.WithFields(logrus.Fields{
		"year":   year,
		"months": len(rows),
	}).Debug("Year rollup calculated")

	return finish(rows), nil
}

func index(aggs []models.MonthlyAggregate) map[ledger.Month]bucket {
	out := make(map[ledger.Month]bucket, len(aggs))
	for _, a := range aggs {
		m := ledger.MonthOf(a.Bucket)
		b := out[m]
		b.count += a.Count
		b.sum = b.sum.Add(ledger.Amount(a.Total))
		out[m] = b
	}
	return out
}

// join merges the aggregates keyed by month, driven by the issuance months
// of the requested year.
func join(year int, issuance, planIssuance, planCollection, payments map[ledger.Month]bucket) []merged {
	rows := make([]merged, 0, len(issuance))
	for m, iss := range issuance {
		if m.Year != year {
			continue
		}
		rows = append(rows, merged{
			month:          m,
			issuance:       iss,
			planIssuance:   planIssuance[m].sum,
			planCollection: planCollection[m].sum,
			payments:       payments[m],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].month.Month < rows[j].month.Month
	})
	return rows
}

// finish computes the ratios. Year shares need the totals of the merged
// rows, so they take a second pass.
func finish(rows []merged) []MonthRow {
	issuedPerYear := make(map[int]decimal.Decimal)
	paidPerYear := make(map[int]decimal.Decimal)
	for _, m := range rows {
		issuedPerYear[m.month.Year] = issuedPerYear[m.month.Year].Add(m.issuance.sum)
		paidPerYear[m.month.Year] = paidPerYear[m.month.Year].Add(m.payments.sum)
	}

	out := make([]MonthRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, MonthRow{
			Year:                      m.month.Year,
			Month:                     int(m.month.Month),
			NumCredits:                m.issuance.count,
			PlanSum:                   ledger.Round2(m.planIssuance),
			SumCredits:                ledger.Round2(m.issuance.sum),
			PlanExecutionPercent:      ledger.Round2(ledger.Percent(m.issuance.sum, m.planIssuance)),
			NumPayments:               m.payments.count,
			PlanCollectionSum:         ledger.Round2(m.planCollection),
			SumPayments:               ledger.Round2(m.payments.sum),
			PlanCollectionPercent:     ledger.Round2(ledger.Percent(m.payments.sum, m.planCollection)),
			SumCreditsPercentPerYear:  ledger.Round2(ledger.Percent(m.issuance.sum, issuedPerYear[m.month.Year])),
			SumPaymentsPercentPerYear: ledger.Round2(ledger.Percent(m.payments.sum, paidPerYear[m.month.Year])),
		})
	}
	return out
}
