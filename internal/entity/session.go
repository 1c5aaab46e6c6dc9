package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SessionRecord is the server-side session row. UserID is populated after the
// payload save succeeds and exists only for bulk lookup and deletion.
type SessionRecord struct {
	SID    string         `gorm:"column:sid;primaryKey;type:varchar(64)"`
	UserID *int64         `gorm:"column:userid;index"`
	Data   datatypes.JSON `gorm:"not null"`
	Expire time.Time      `gorm:"not null;index"`
}

func (SessionRecord) TableName() string {
	return "usersession"
}
