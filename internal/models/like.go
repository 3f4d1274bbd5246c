package models

import (
	"time"
)

// TargetKind 标记点赞/karma 的目标类型
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid 检查目标类型是否合法
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// KarmaDelta 返回该类型目标被点赞时作者获得的 karma 值
// 帖子 5 分，评论 1 分；取消点赞时取负
func (k TargetKind) KarmaDelta() int {
	if k == TargetPost {
		return 5
	}
	return 1
}

// LikeRecord 记录一次点赞。
// (user_id, target_kind, target_id) 上的联合唯一索引是整个点赞引擎的核心约束：
// 任何时刻每个用户对同一目标至多存在一条记录，并发重复请求由数据库兜底。
type LikeRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_like_identity" json:"user_id"`
	TargetKind TargetKind `gorm:"size:16;not null;uniqueIndex:idx_like_identity" json:"target_kind"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_like_identity" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
