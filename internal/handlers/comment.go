package handlers

import (
	"net/http"
	"playto/internal/db"
	"playto/internal/middleware"
	"playto/internal/models"
	"playto/internal/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type createCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// Create 在帖子下发表评论，parent_id 非空时为楼中楼回复
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		JSONError(c, http.StatusBadRequest, "content must not be empty")
		return
	}

	// 回复必须指向本帖已存在的评论，杜绝跨帖子挂树和环
	if req.ParentID != nil {
		var parent models.Comment
		if err := db.DB.First(&parent, *req.ParentID).Error; err != nil {
			JSONError(c, http.StatusNotFound, "parent comment not found")
			return
		}
		if parent.PostID != post.ID {
			JSONError(c, http.StatusBadRequest, "parent comment belongs to another post")
			return
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "internal error")
		return
	}

	// 评论数变了，主动失效帖子列表缓存
	utils.GetCache().Delete(postListCacheKey)

	comment.User = *user
	comment.ContentHTML = utils.RenderMarkdown(comment.Content)
	c.JSON(http.StatusCreated, comment)
}
