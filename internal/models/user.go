package models

import "time"

type User struct {
	ID               uint      `gorm:"primaryKey"`
	Login            string    `gorm:"size:250"`
	RegistrationDate time.Time `gorm:"type:date"`
	Credits          []Credit
}
