package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseLabelMap(t *testing.T) {
	m, err := ParseLabelMap(" Видача = issuance , збір=Collection,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]Category{
		"видача":   CategoryIssuance,
		" ВИДАЧА ": CategoryIssuance,
		"Збір":     CategoryCollection,
	}
	for label, want := range cases {
		got, ok := m.Resolve(label)
		if !ok || got != want {
			t.Fatalf("Resolve(%q) = %q, %v; want %q", label, got, ok, want)
		}
	}
	if _, ok := m.Resolve("кредит"); ok {
		t.Fatalf("unknown label resolved")
	}
	if labels := m.Labels(); len(labels) != 2 || labels[0] != "видача" || labels[1] != "збір" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestParseLabelMapErrors(t *testing.T) {
	for _, in := range []string{"", "видача", "видача=loans", "=issuance"} {
		if _, err := ParseLabelMap(in); err == nil {
			t.Fatalf("ParseLabelMap(%q): expected error", in)
		}
	}
}

func TestCatalog(t *testing.T) {
	categories := map[Category]Entry{
		CategoryIssuance:   {ID: 3, Name: "видача"},
		CategoryCollection: {ID: 4, Name: "збір"},
	}
	paymentTypes := map[PaymentType]Entry{
		PaymentTypeBody:    {ID: 1, Name: "тіло"},
		PaymentTypePercent: {ID: 2, Name: "відсотки"},
	}

	c, err := NewCatalog(categories, paymentTypes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CategoryID(CategoryCollection) != 4 || c.CategoryName(CategoryIssuance) != "видача" {
		t.Fatalf("category lookup broken")
	}
	if c.PaymentTypeID(PaymentTypePercent) != 2 {
		t.Fatalf("payment type lookup broken")
	}
	if cat, ok := c.CategoryByID(3); !ok || cat != CategoryIssuance {
		t.Fatalf("CategoryByID(3) = %q, %v", cat, ok)
	}
	if _, ok := c.CategoryByID(1); ok {
		t.Fatalf("payment type id must not resolve as a category")
	}

	delete(paymentTypes, PaymentTypeBody)
	if _, err := NewCatalog(categories, paymentTypes); err == nil {
		t.Fatalf("expected error for missing payment type")
	}
}

func TestPercentAndRound(t *testing.T) {
	cases := []struct {
		part, whole string
		want        float64
	}{
		{"45000", "100000", 45},
		{"1", "3", 33.33},
		{"2", "3", 66.67},
		{"10", "0", 0},
		{"0", "0", 0},
		{"150", "100", 150},
	}
	for _, tc := range cases {
		got := Round2(Percent(decimal.RequireFromString(tc.part), decimal.RequireFromString(tc.whole)))
		if got != tc.want {
			t.Fatalf("Percent(%s, %s) = %v, want %v", tc.part, tc.whole, got, tc.want)
		}
	}

	if got := Round2(decimal.RequireFromString("2.345")); got != 2.35 {
		t.Fatalf("Round2 half case: got %v", got)
	}
	if got := Round2(Amount(0.1).Add(Amount(0.2))); got != 0.3 {
		t.Fatalf("Amount sum: got %v", got)
	}
}

func TestMonth(t *testing.T) {
	m := MonthOf(time.Date(2024, time.December, 15, 23, 0, 0, 0, time.UTC))
	if m.String() != "2024-12" {
		t.Fatalf("String() = %q", m.String())
	}
	if !m.First().Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("First() = %v", m.First())
	}
	if !m.Next().Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Next() = %v", m.Next())
	}
	if !IsFirstOfMonth(m.First()) || IsFirstOfMonth(m.First().AddDate(0, 0, 1)) {
		t.Fatalf("IsFirstOfMonth broken")
	}
}

func TestDaysBetween(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	kyiv := time.FixedZone("EET", 2*60*60)

	cases := []struct {
		today time.Time
		want  int
	}{
		{time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC), 10},
		{due, 0},
		{time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), -5},
		{time.Date(2024, 3, 11, 1, 0, 0, 0, kyiv), 1},
	}
	for _, tc := range cases {
		if got := DaysBetween(due, tc.today); got != tc.want {
			t.Fatalf("DaysBetween(%v) = %d, want %d", tc.today, got, tc.want)
		}
	}
}
