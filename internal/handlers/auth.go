package handlers

import (
	"net/http"
	"playto/internal/db"
	"playto/internal/models"
	"playto/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup 注册新用户并直接建立会话
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "username and password required")
		return
	}
	if len(req.Password) < 6 {
		JSONError(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	var count int64
	db.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		JSONError(c, http.StatusBadRequest, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "internal error")
		return
	}

	user := models.User{Username: req.Username, Password: hash}
	if err := db.DB.Create(&user).Error; err != nil {
		// 唯一索引兜底并发注册
		JSONError(c, http.StatusBadRequest, "username already exists")
		return
	}

	h.establishSession(c, &user)
	c.JSON(http.StatusCreated, gin.H{"username": user.Username})
}

// Login 校验密码并写入会话
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "username and password required")
		return
	}

	var user models.User
	if err := db.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		JSONError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.establishSession(c, &user)
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout 清除会话
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) establishSession(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()
}
