// Package credits builds the per-user credit history report.
package credits

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
	"ledger-reports/internal/models"
)

// Store returns every credit of a user left-joined with its payment sums.
type Store interface {
	CreditTotals(ctx context.Context, userID uint) ([]models.CreditTotals, error)
}

// CreditSummary is one row of the history. Closed credits carry
// actual_return_date and total_sum; open credits carry return_date,
// days_overdue and the payment breakdown.
type CreditSummary struct {
	IssuanceDate      string   `json:"issuance_date"`
	IsClosed          bool     `json:"is_closed"`
	ActualReturnDate  *string  `json:"actual_return_date,omitempty"`
	ReturnDate        *string  `json:"return_date,omitempty"`
	DaysOverdue       *int     `json:"days_overdue,omitempty"`
	Body              float64  `json:"body"`
	Percent           float64  `json:"percent"`
	TotalSum          *float64 `json:"total_sum,omitempty"`
	PaymentsByBody    *float64 `json:"payments_by_body,omitempty"`
	PaymentsByPercent *float64 `json:"payments_by_percent,omitempty"`
}

type Service struct {
	store  Store
	now    func() time.Time
	logger *logrus.Logger
}

// NewService wires the aggregator. now supplies "today" for overdue days.
func NewService(store Store, now func() time.Time, logger *logrus.Logger) *Service {
	return &Service{store: store, now: now, logger: logger}
}

// History returns the credit history of a user, or NotFound when the user
// has no credits.
func (s *Service) History(ctx context.Context, userID uint) ([]CreditSummary, error) {
	rows, err := s.store.CreditTotals(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to load user credits")
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("no credits found for user %d", userID)
	}

	today := s.now()
	history := make([]CreditSummary, 0, len(rows))
	for _, r := range rows {
		history = append(history, summarize(r, today))
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"credits": len(history),
	}).Debug("Credit history built")

	return history, nil
}

func summarize(r models.CreditTotals, today time.Time) CreditSummary {
	sum := CreditSummary{
		IssuanceDate: r.IssuanceDate.Format(ledger.DateLayout),
		IsClosed:     r.ActualReturnDate != nil,
		Body:         r.Body,
		Percent:      r.Percent,
	}

	if sum.IsClosed {
		closed := r.ActualReturnDate.Format(ledger.DateLayout)
		total := ledger.Round2(ledger.Amount(r.TotalPaid))
		sum.ActualReturnDate = &closed
		sum.TotalSum = &total
		return sum
	}

	due := r.ReturnDate.Format(ledger.DateLayout)
	overdue := ledger.DaysBetween(r.ReturnDate, today)
	byBody := ledger.Round2(ledger.Amount(r.PaidBody))
	byPercent := ledger.Round2(ledger.Amount(r.PaidPercent))
	sum.ReturnDate = &due
	sum.DaysOverdue = &overdue
	sum.PaymentsByBody = &byBody
	sum.PaymentsByPercent = &byPercent
	return sum
}
