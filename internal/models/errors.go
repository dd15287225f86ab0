package models

import "errors"

var (
	// ErrResumeNotFound 简历不存在错误
	ErrResumeNotFound = errors.New("resume not found")

	// ErrInvalidResumeStatus 无效的简历状态错误
	ErrInvalidResumeStatus = errors.New("invalid resume status")
)
