package credits

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/models"
)

type fakeStore struct {
	rows []models.CreditTotals
	err  error
}

func (f *fakeStore) CreditTotals(ctx context.Context, userID uint) ([]models.CreditTotals, error) {
	return f.rows, f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHistoryNoCreditsIsNotFound(t *testing.T) {
	svc := NewService(&fakeStore{}, fixedClock(day(2024, 3, 15)), quietLogger())

	_, err := svc.History(context.Background(), 7)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHistoryStoreErrorPropagates(t *testing.T) {
	storeErr := apperr.Storage("query failed", errors.New("boom"))
	svc := NewService(&fakeStore{err: storeErr}, fixedClock(day(2024, 3, 15)), quietLogger())

	_, err := svc.History(context.Background(), 7)
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestHistoryClosedCredit(t *testing.T) {
	closed := day(2024, 2, 1)
	store := &fakeStore{rows: []models.CreditTotals{{
		CreditID:         1,
		IssuanceDate:     day(2024, 1, 10),
		ReturnDate:       day(2024, 2, 10),
		ActualReturnDate: &closed,
		Body:             1000,
		Percent:          12.5,
		TotalPaid:        1125.456,
		PaidBody:         1000,
		PaidPercent:      125.456,
	}}}
	svc := NewService(store, fixedClock(day(2024, 3, 15)), quietLogger())

	history, err := svc.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 credit, got %d", len(history))
	}
	got := history[0]
	if !got.IsClosed {
		t.Fatalf("expected closed credit")
	}
	if got.ActualReturnDate == nil || *got.ActualReturnDate != "2024-02-01" {
		t.Fatalf("unexpected actual_return_date %v", got.ActualReturnDate)
	}
	if got.TotalSum == nil || *got.TotalSum != 1125.46 {
		t.Fatalf("unexpected total_sum %v", got.TotalSum)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{"days_overdue", "payments_by_body", "payments_by_percent", "\"return_date\""} {
		if strings.Contains(string(raw), key) {
			t.Fatalf("closed credit must not include %s: %s", key, raw)
		}
	}
}

func TestHistoryOpenCredit(t *testing.T) {
	cases := []struct {
		name    string
		due     time.Time
		overdue int
	}{
		{"overdue", day(2024, 3, 5), 10},
		{"due today", day(2024, 3, 15), 0},
		{"not yet due", day(2024, 3, 20), -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{rows: []models.CreditTotals{{
				CreditID:     2,
				IssuanceDate: day(2024, 1, 1),
				ReturnDate:   tc.due,
				Body:         500,
				Percent:      10,
				TotalPaid:    300.333,
				PaidBody:     250.005,
				PaidPercent:  50.328,
			}}}
			svc := NewService(store, fixedClock(time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)), quietLogger())

			history, err := svc.History(context.Background(), 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := history[0]
			if got.IsClosed {
				t.Fatalf("expected open credit")
			}
			if got.DaysOverdue == nil || *got.DaysOverdue != tc.overdue {
				t.Fatalf("expected days_overdue %d, got %v", tc.overdue, got.DaysOverdue)
			}
			if got.PaymentsByBody == nil || *got.PaymentsByBody != 250.01 {
				t.Fatalf("unexpected payments_by_body %v", got.PaymentsByBody)
			}
			if got.PaymentsByPercent == nil || *got.PaymentsByPercent != 50.33 {
				t.Fatalf("unexpected payments_by_percent %v", got.PaymentsByPercent)
			}

			raw, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			for _, key := range []string{"actual_return_date", "total_sum"} {
				if strings.Contains(string(raw), key) {
					t.Fatalf("open credit must not include %s: %s", key, raw)
				}
			}
			if !strings.Contains(string(raw), "\"days_overdue\"") {
				t.Fatalf("open credit must include days_overdue: %s", raw)
			}
		})
	}
}
