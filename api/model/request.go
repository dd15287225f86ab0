package model

import (
	"mime/multipart"
)

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// ResumeUploadRequest 简历上传请求
type ResumeUploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 简历文件
}

// ResumeListRequest 简历列表请求
type ResumeListRequest struct {
	PaginationRequest
	Status string `form:"status" json:"status" binding:"omitempty"`     // 处理状态过滤
	Role   string `form:"role" json:"role" binding:"omitempty,jobrole"` // 职位标签过滤
}

// ResumeFileRequest 按文件名操作简历的请求
type ResumeFileRequest struct {
	FileName string `uri:"filename" binding:"required"` // 简历文件名
}

// RoleRequest 按职位查询简历的请求
type RoleRequest struct {
	Role string `uri:"role" binding:"required"` // 职位标签
}

// QARequest 问答请求
type QARequest struct {
	Question string `json:"question" binding:"required"` // 问题内容
}

// AnalyzeRequest 预设分析请求
type AnalyzeRequest struct {
	Type  string `json:"type" binding:"required,oneof=skills experience education compare"` // 分析类型
	Query string `json:"query" binding:"omitempty"`                                         // 附加的查询内容
}

// SuggestRequest 简历修改建议请求
type SuggestRequest struct {
	CurrentRole    string `json:"current_role" binding:"required"`    // 当前简历对应的职位
	TargetPosition string `json:"target_position" binding:"required"` // 目标职位
}
