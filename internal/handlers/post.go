package handlers

import (
	"net/http"
	"playto/internal/db"
	"playto/internal/middleware"
	"playto/internal/models"
	"playto/internal/services"
	"playto/internal/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const postListCacheKey = "posts:list"

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// fillCommentCounts 批量填充帖子的评论数量
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int64
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int64)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// fillLikeCounts 批量填充点赞数量
func fillLikeCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		TargetID uint
		Count    int64
	}
	var results []countResult
	db.DB.Model(&models.LikeRecord{}).
		Select("target_id, COUNT(*) as count").
		Where("target_kind = ? AND target_id IN ?", models.TargetPost, postIDs).
		Group("target_id").
		Scan(&results)

	countMap := make(map[uint]int64)
	for _, r := range results {
		countMap[r.TargetID] = r.Count
	}

	for i := range posts {
		posts[i].LikeCount = countMap[posts[i].ID]
	}
}

// List 返回按时间倒序的帖子流
// 共享部分（帖子、计数）走本地缓存，is_liked 随请求实时查询
func (h *PostHandler) List(c *gin.Context) {
	var posts []models.Post

	if cached := utils.GetCache().Get(postListCacheKey); cached != nil {
		if cachedPosts, ok := cached.([]models.Post); ok {
			posts = cachedPosts
		}
	}

	if posts == nil {
		db.DB.Preload("User").
			Order("created_at DESC").
			Limit(50).
			Find(&posts)

		fillCommentCounts(posts)
		fillLikeCounts(posts)
		for i := range posts {
			posts[i].ContentHTML = utils.RenderMarkdown(posts[i].Content)
		}

		// 写入缓存，有效期 1 分钟；发帖/评论/点赞时主动失效
		utils.GetCache().Set(postListCacheKey, posts, 1*time.Minute)
	}

	// 每个请求单独标注当前用户的点赞状态，不进缓存
	userID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	likedSet := services.LikedTargetIDs(userID, models.TargetPost, postIDs)

	out := make([]models.Post, len(posts))
	copy(out, posts)
	for i := range out {
		out[i].LikedByViewer = likedSet[out[i].ID]
	}

	c.JSON(http.StatusOK, out)
}

type createPostRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create 发布新帖
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		JSONError(c, http.StatusBadRequest, "content must not be empty")
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Content: req.Content,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "internal error")
		return
	}

	utils.GetCache().Delete(postListCacheKey)

	post.User = *user
	post.ContentHTML = utils.RenderMarkdown(post.Content)
	c.JSON(http.StatusCreated, post)
}

// Detail 返回单个帖子及其嵌套评论树
func (h *PostHandler) Detail(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.Preload("User").First(&post, postID).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	userID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	// 平铺捞全量评论，树结构在内存里组装
	var comments []models.Comment
	db.DB.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Find(&comments)

	fillCommentLikes(comments, userID)
	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
	}

	tree := services.BuildCommentTree(comments)

	post.LikeCount = services.LikeCount(models.TargetPost, post.ID)
	post.CommentCount = int64(len(comments))
	post.LikedByViewer = services.LikedByUser(userID, models.TargetPost, post.ID)
	post.ContentHTML = utils.RenderMarkdown(post.Content)

	c.JSON(http.StatusOK, gin.H{
		"id":             post.ID,
		"author":         post.User,
		"content":        post.Content,
		"content_html":   post.ContentHTML,
		"created_at":     post.CreatedAt,
		"likes_count":    post.LikeCount,
		"comments_count": post.CommentCount,
		"is_liked":       post.LikedByViewer,
		"comments":       tree,
	})
}

// fillCommentLikes 批量填充评论的点赞数和当前用户的点赞状态
func fillCommentLikes(comments []models.Comment, userID uint) {
	if len(comments) == 0 {
		return
	}

	ids := make([]uint, len(comments))
	for i, com := range comments {
		ids[i] = com.ID
	}

	type countResult struct {
		TargetID uint
		Count    int64
	}
	var results []countResult
	db.DB.Model(&models.LikeRecord{}).
		Select("target_id, COUNT(*) as count").
		Where("target_kind = ? AND target_id IN ?", models.TargetComment, ids).
		Group("target_id").
		Scan(&results)

	countMap := make(map[uint]int64)
	for _, r := range results {
		countMap[r.TargetID] = r.Count
	}

	likedSet := services.LikedTargetIDs(userID, models.TargetComment, ids)

	for i := range comments {
		comments[i].LikeCount = countMap[comments[i].ID]
		comments[i].LikedByViewer = likedSet[comments[i].ID]
	}
}
