package models

import "time"

// CreditTotals is one credit joined with the sums of its payments.
type CreditTotals struct {
	CreditID         uint       `gorm:"column:credit_id"`
	IssuanceDate     time.Time  `gorm:"column:issuance_date"`
	ReturnDate       time.Time  `gorm:"column:return_date"`
	ActualReturnDate *time.Time `gorm:"column:actual_return_date"`
	Body             float64    `gorm:"column:body"`
	Percent          float64    `gorm:"column:percent"`
	TotalPaid        float64    `gorm:"column:total_paid"`
	PaidBody         float64    `gorm:"column:paid_body"`
	PaidPercent      float64    `gorm:"column:paid_percent"`
}

// MonthlyAggregate is a count and sum bucketed by the first day of a month.
type MonthlyAggregate struct {
	Bucket time.Time `gorm:"column:bucket"`
	Count  int64     `gorm:"column:cnt"`
	Total  float64   `gorm:"column:total"`
}
