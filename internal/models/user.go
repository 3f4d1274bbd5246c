package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"` // 注册后不可修改，作为身份标识
	Password  string    `gorm:"not null" json:"-"`                            // Hash
	CreatedAt time.Time `json:"created_at"`

	// 非数据库字段：用户的 karma 不落在用户表，需要时由 KarmaEntry 汇总填充
	Karma int `gorm:"-" json:"karma,omitempty"`
}
