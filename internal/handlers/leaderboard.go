package handlers

import (
	"net/http"
	"playto/internal/services"
	"playto/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct{}

func NewLeaderboardHandler() *LeaderboardHandler {
	return &LeaderboardHandler{}
}

// List 返回窗口内 karma 榜单，默认最近 24 小时前 5 名
// 结果缓存 1 分钟，前端按分钟轮询正好命中
func (h *LeaderboardHandler) List(c *gin.Context) {
	window := services.DefaultLeaderboardWindow
	if hours := utils.StringToInt(c.Query("hours")); hours > 0 {
		window = time.Duration(hours) * time.Hour
	}

	limit := services.DefaultLeaderboardLimit
	if l := utils.StringToInt(c.Query("limit")); l > 0 {
		limit = l
	}

	c.JSON(http.StatusOK, services.TopAuthorsCached(window, limit))
}
