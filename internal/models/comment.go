package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// 非数据库字段，用于查询时填充
	LikeCount     int64  `gorm:"-" json:"likes_count"`
	LikedByViewer bool   `gorm:"-" json:"is_liked"`
	ContentHTML   string `gorm:"-" json:"content_html,omitempty"`
}
