package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"` // 原始 Markdown 文本
	CreatedAt time.Time `json:"created_at"`

	// 非数据库字段，用于查询时填充
	LikeCount     int64  `gorm:"-" json:"likes_count"`
	CommentCount  int64  `gorm:"-" json:"comments_count"`
	LikedByViewer bool   `gorm:"-" json:"is_liked"`
	ContentHTML   string `gorm:"-" json:"content_html,omitempty"`
}
