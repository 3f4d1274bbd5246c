package services

import (
	"errors"
	"playto/internal/db"
	"playto/internal/models"

	"gorm.io/gorm"
)

// ToggleLike 翻转 actor 对目标的点赞状态，返回翻转后的状态和目标当前点赞数。
//
// 有记录则取消（删记录、给作者追加负 karma 流水），无记录则点赞（建记录、追加正 karma）。
// 同一用户对同一目标的并发重复请求靠 like_records 上的联合唯一索引兜底：
// 撞到约束说明另一个请求刚落库，此时不再反向翻转，而是重读数据库现状返回，
// 保证重复提交表现为一次点赞而不是一赞一消。Conflict 不外泄。
func ToggleLike(actorID uint, kind models.TargetKind, targetID uint) (liked bool, count int64, err error) {
	if actorID == 0 {
		return false, 0, ErrUnauthorized
	}
	if !kind.Valid() {
		return false, 0, ErrValidation
	}

	authorID, err := targetAuthor(kind, targetID)
	if err != nil {
		return false, 0, err
	}

	liked, err = toggleOnce(actorID, kind, targetID, authorID)
	if errors.Is(err, ErrConflict) {
		// 并发请求已经改过状态，以数据库现状为准
		liked, err = resolveConflict(actorID, kind, targetID)
	}
	if err != nil {
		return false, 0, err
	}

	count = LikeCount(kind, targetID)
	return liked, count, nil
}

// toggleOnce 在一个事务里执行一次翻转，撞唯一约束时返回 ErrConflict
func toggleOnce(actorID uint, kind models.TargetKind, targetID, authorID uint) (liked bool, err error) {
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.LikeRecord
		findErr := tx.Where("user_id = ? AND target_kind = ? AND target_id = ?", actorID, kind, targetID).
			First(&existing).Error

		if findErr == nil {
			// 取消点赞
			res := tx.Delete(&models.LikeRecord{}, existing.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// 另一个并发请求抢先删掉了
				return ErrConflict
			}
			liked = false
			return appendKarma(tx, authorID, -kind.KarmaDelta(), kind)
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// 点赞
		rec := models.LikeRecord{UserID: actorID, TargetKind: kind, TargetID: targetID}
		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		liked = true
		return appendKarma(tx, authorID, kind.KarmaDelta(), kind)
	})
	return liked, err
}

// resolveConflict 在撞上唯一约束后重读现状：记录在就是已点赞，不在就是已取消。
// 重复提交因此表现为一次点赞，而不是一赞一消
func resolveConflict(actorID uint, kind models.TargetKind, targetID uint) (bool, error) {
	var rec models.LikeRecord
	err := db.DB.Where("user_id = ? AND target_kind = ? AND target_id = ?", actorID, kind, targetID).
		First(&rec).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}

// LikeCount 统计目标当前点赞数。
// 永远从 like_records 现算，不维护可能漂移的计数列
func LikeCount(kind models.TargetKind, targetID uint) int64 {
	var count int64
	db.DB.Model(&models.LikeRecord{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&count)
	return count
}

// LikedByUser 查询用户是否点赞过目标，userID 为 0（未登录）直接返回 false
func LikedByUser(userID uint, kind models.TargetKind, targetID uint) bool {
	if userID == 0 {
		return false
	}
	var count int64
	db.DB.Model(&models.LikeRecord{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Count(&count)
	return count > 0
}

// LikedTargetIDs 批量查询用户点过赞的目标 ID 集合，用于列表页一次性填充
func LikedTargetIDs(userID uint, kind models.TargetKind, targetIDs []uint) map[uint]bool {
	likedSet := make(map[uint]bool)
	if userID == 0 || len(targetIDs) == 0 {
		return likedSet
	}
	var ids []uint
	db.DB.Model(&models.LikeRecord{}).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, kind, targetIDs).
		Pluck("target_id", &ids)
	for _, id := range ids {
		likedSet[id] = true
	}
	return likedSet
}

// targetAuthor 返回目标内容的作者 ID，目标不存在时返回 ErrNotFound
func targetAuthor(kind models.TargetKind, targetID uint) (uint, error) {
	var userID uint
	var err error
	if kind == models.TargetPost {
		var post models.Post
		err = db.DB.Select("user_id").First(&post, targetID).Error
		userID = post.UserID
	} else {
		var comment models.Comment
		err = db.DB.Select("user_id").First(&comment, targetID).Error
		userID = comment.UserID
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}
