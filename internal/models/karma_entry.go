package models

import (
	"time"
)

// KarmaEntry 是 karma 流水账，只追加，从不修改或删除。
// UserID 指内容作者（收到赞的人），不是点赞者。
type KarmaEntry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index:idx_karma_user_time" json:"user_id"`
	Delta      int        `gorm:"not null" json:"delta"` // +5/-5（帖子）或 +1/-1（评论）
	TargetKind TargetKind `gorm:"size:16;not null" json:"target_kind"`
	CreatedAt  time.Time  `gorm:"index:idx_karma_user_time" json:"created_at"`
}
