package database

import (
	"testing"

	"ledger-reports/internal/config"
	"ledger-reports/internal/ledger"
)

func TestDictionaryNamesCoversCatalog(t *testing.T) {
	cfg := &config.Config{
		CategoryNames: map[ledger.Category]string{
			ledger.CategoryIssuance:   "видача",
			ledger.CategoryCollection: "збір",
		},
		PaymentTypeNames: map[ledger.PaymentType]string{
			ledger.PaymentTypeBody:    "тіло",
			ledger.PaymentTypePercent: "відсотки",
		},
	}

	names := dictionaryNames(cfg)
	want := []string{"тіло", "відсотки", "видача", "збір"}
	if len(names) != len(want) {
		t.Fatalf("want %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("want %v, got %v", want, names)
		}
	}
}
