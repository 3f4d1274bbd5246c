package router

import (
	"playto/internal/handlers"
	"playto/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	likeHandler := handlers.NewLikeHandler()
	leaderboardHandler := handlers.NewLeaderboardHandler()

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.POST("/signup", authHandler.Signup)           // 注册
	api.POST("/login", authHandler.Login)             // 登录
	api.POST("/logout", authHandler.Logout)           // 退出登录
	api.GET("/posts", postHandler.List)               // 帖子流
	api.GET("/posts/:id", postHandler.Detail)         // 帖子详情 + 评论树
	api.GET("/leaderboard", leaderboardHandler.List)  // karma 榜单

	// 受保护路由 (Protected Routes)
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)               // 发布帖子
		authorized.POST("/posts/:id/comments", commentHandler.Create) // 发表评论/回复
		authorized.POST("/like/:type/:id", likeHandler.Toggle)      // 点赞/取消点赞
	}
}
