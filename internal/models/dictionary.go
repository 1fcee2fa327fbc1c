package models

type Dictionary struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:250;uniqueIndex;not null"`
}

func (Dictionary) TableName() string {
	return "dictionary"
}
