package handlers

import (
	"errors"
	"net/http"
	"playto/internal/services"

	"github.com/gin-gonic/gin"
)

// JSONError 统一的错误响应格式
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// serviceError 把 services 层的错误类型映射到 HTTP 状态码。
// Conflict 不在这里出现：点赞引擎内部已经消化掉了
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		JSONError(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, services.ErrNotFound):
		JSONError(c, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrValidation):
		JSONError(c, http.StatusBadRequest, "invalid request")
	default:
		JSONError(c, http.StatusInternalServerError, "internal error")
	}
}
