package entity

import "time"

// RefreshToken is a single-use credential. A row is consumed the moment it is
// rotated: the delete of the old value and the insert of its successor happen
// in the same transaction.
type RefreshToken struct {
	Token  string    `gorm:"primaryKey;type:varchar(64)"`
	UserID int64     `gorm:"column:userid;not null;index"`
	Expire time.Time `gorm:"not null"`
}

func (RefreshToken) TableName() string {
	return "refreshtokens"
}
