package services

import (
	"playto/internal/db"
	"playto/internal/models"
	"time"

	"gorm.io/gorm"
)

// appendKarma 在点赞事务内给内容作者追加一条 karma 流水。
// 流水只增不改：点赞 +5/+1，取消点赞补一条 -5/-1，历史永远可回放
func appendKarma(tx *gorm.DB, userID uint, delta int, kind models.TargetKind) error {
	entry := models.KarmaEntry{
		UserID:     userID,
		Delta:      delta,
		TargetKind: kind,
	}
	return tx.Create(&entry).Error
}

// KarmaSince 汇总用户自 since 起的 karma 变动。
// (user_id, created_at) 联合索引保证这里是一次范围扫描而不是全表扫
func KarmaSince(userID uint, since time.Time) int {
	var total int64
	db.DB.Model(&models.KarmaEntry{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total)
	return int(total)
}
