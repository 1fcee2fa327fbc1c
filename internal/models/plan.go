package models

import "time"

// Plan is a target sum for one (month, category) pair. Period is always the
// first day of the month; at most one row exists per pair.
type Plan struct {
	ID         uint       `gorm:"primaryKey"`
	Period     time.Time  `gorm:"type:date;index:idx_plans_period_category;not null"`
	Sum        float64    `gorm:"not null"`
	CategoryID uint       `gorm:"index:idx_plans_period_category;not null"`
	Category   Dictionary `gorm:"foreignKey:CategoryID"`
}
