package handlers

import (
	"net/http"
	"playto/internal/middleware"
	"playto/internal/models"
	"playto/internal/services"
	"playto/internal/utils"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct{}

func NewLikeHandler() *LikeHandler {
	return &LikeHandler{}
}

// Toggle handles like/unlike logic for posts and comments
// 响应带上权威的 liked 和 likes_count，客户端用它校正乐观更新
func (h *LikeHandler) Toggle(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	kind := models.TargetKind(c.Param("type")) // "post" or "comment"
	if !kind.Valid() {
		JSONError(c, http.StatusBadRequest, "unknown target type")
		return
	}
	targetID := utils.StringToUint(c.Param("id"))

	liked, count, err := services.ToggleLike(user.ID, kind, targetID)
	if err != nil {
		serviceError(c, err)
		return
	}

	// 点赞数变了，主动失效帖子列表缓存
	utils.GetCache().Delete(postListCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"liked":       liked,
		"likes_count": count,
	})
}
