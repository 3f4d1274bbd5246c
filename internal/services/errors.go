package services

import "errors"

// 核心错误类型，handlers 负责映射到 HTTP 状态码
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	// ErrConflict 表示点赞唯一约束竞争。点赞引擎内部重试消化，正常不会抛给调用方
	ErrConflict = errors.New("conflict")
)
