package models

import "time"

// Credit is a loan issued to a user. A nil ActualReturnDate means the credit is still open.
type Credit struct {
	ID               uint       `gorm:"primaryKey"`
	UserID           uint       `gorm:"index;not null"`
	User             User
	IssuanceDate     time.Time  `gorm:"type:date;index;not null"`
	ReturnDate       time.Time  `gorm:"type:date;not null"` // contractual due date
	ActualReturnDate *time.Time `gorm:"type:date"`
	Body             float64    `gorm:"not null"` // principal
	Percent          float64    `gorm:"not null"` // interest rate
	Payments         []Payment
}

func (c Credit) IsClosed() bool {
	return c.ActualReturnDate != nil
}
