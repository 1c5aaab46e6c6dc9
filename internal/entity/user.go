package entity

import "time"

type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(255);not null"`
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string `gorm:"type:text;not null"`
	IsValidated bool   `gorm:"column:isvalidated;not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
