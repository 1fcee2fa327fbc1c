package models

import "time"

type Payment struct {
	ID          uint `gorm:"primaryKey"`
	CreditID    uint `gorm:"index;not null"`
	Credit      Credit
	Sum         float64    `gorm:"not null"`
	PaymentDate time.Time  `gorm:"type:date;index;not null"`
	TypeID      uint       `gorm:"index;not null"` // dictionary: principal or interest
	Type        Dictionary `gorm:"foreignKey:TypeID"`
}
