package services

import (
	"fmt"
	"playto/internal/db"
	"playto/internal/models"
	"playto/internal/utils"
	"time"
)

// 榜单默认参数：24 小时窗口，前 5 名，缓存 1 分钟（前端每 60s 轮询一次）
const (
	DefaultLeaderboardWindow = 24 * time.Hour
	DefaultLeaderboardLimit  = 5
	leaderboardCacheTTL      = time.Minute
)

// LeaderboardRow 榜单的一行
type LeaderboardRow struct {
	Username string `json:"username"`
	Karma    int    `json:"karma"`
}

// TopAuthors 统计窗口内 karma 最高的作者。
// 每次调用都从流水现算，没有需要失效的持久化排名状态。
// 排序规则：karma 降序；打平时窗口内最早产生流水的排前面，保证结果确定。
// 窗口内净 karma 为 0 或负数的作者不出现在榜单里。
func TopAuthors(since time.Time, limit int) []LeaderboardRow {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	// first_at 只参与排序，不往结构体里扫
	type aggRow struct {
		UserID uint
		Karma  int
	}
	var rows []aggRow
	db.DB.Model(&models.KarmaEntry{}).
		Select("user_id, SUM(delta) AS karma, MIN(created_at) AS first_at").
		Where("created_at >= ?", since).
		Group("user_id").
		Having("SUM(delta) > 0").
		Order("karma DESC, first_at ASC").
		Limit(limit).
		Scan(&rows)

	if len(rows) == 0 {
		return []LeaderboardRow{}
	}

	// 批量补用户名
	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	var users []models.User
	db.DB.Select("id, username").Where("id IN ?", ids).Find(&users)
	nameByID := make(map[uint]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Username
	}

	result := make([]LeaderboardRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, LeaderboardRow{Username: nameByID[r.UserID], Karma: r.Karma})
	}
	return result
}

// TopAuthorsCached 带本地缓存的榜单查询，窗口按小时粒度作为缓存键的一部分
func TopAuthorsCached(window time.Duration, limit int) []LeaderboardRow {
	cacheKey := fmt.Sprintf("leaderboard:%dh:%d", int(window.Hours()), limit)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if rows, ok := cached.([]LeaderboardRow); ok {
			return rows
		}
	}

	rows := TopAuthors(time.Now().Add(-window), limit)
	utils.GetCache().Set(cacheKey, rows, leaderboardCacheTTL)
	return rows
}
