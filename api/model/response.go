package model

import (
	"time"

	"github.com/fyerfyer/resume-assistant/internal/vectordb"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	FileName string `json:"filename"` // 文件名
	Size     int64  `json:"size"`     // 文件大小
	Status   string `json:"status"`   // 状态：uploaded，处理在下一次处理运行时进行
}

// ProcessResponse 简历处理运行响应
type ProcessResponse struct {
	Processed  []string          `json:"processed"`        // 成功处理的文件名
	Failed     map[string]string `json:"failed,omitempty"` // 失败的文件名及原因
	ChunkCount int               `json:"chunk_count"`      // 入库的分块总数
}

// ResumeInfo 简历元数据信息
type ResumeInfo struct {
	FileName    string     `json:"filename"`               // 文件名
	Role        string     `json:"role"`                   // 职位标签
	Status      string     `json:"status"`                 // 处理状态
	PageCount   int        `json:"page_count"`             // 页数
	ChunkCount  int        `json:"chunk_count"`            // 分块数量
	UploadedAt  time.Time  `json:"uploaded_at"`            // 上传时间
	ProcessedAt *time.Time `json:"processed_at,omitempty"` // 处理完成时间
}

// ResumeListResponse 简历列表响应
type ResumeListResponse struct {
	Total    int64        `json:"total"`     // 总数量
	Page     int          `json:"page"`      // 当前页码
	PageSize int          `json:"page_size"` // 每页大小
	Resumes  []ResumeInfo `json:"resumes"`   // 简历列表
}

// ResumeDeleteResponse 简历删除响应
type ResumeDeleteResponse struct {
	Success  bool   `json:"success"`  // 是否成功
	FileName string `json:"filename"` // 文件名
}

// RoleListResponse 职位列表响应
type RoleListResponse struct {
	Roles []string `json:"roles"` // 索引中出现过的职位标签
}

// RoleResumeInfo 某职位下的单份简历
type RoleResumeInfo struct {
	FileName string   `json:"filename"` // 文件名
	Role     string   `json:"role"`     // 职位标签
	Chunks   []string `json:"chunks"`   // 相关分块文本
}

// RoleResumesResponse 按职位查询简历的响应
type RoleResumesResponse struct {
	Role    string           `json:"role"`    // 查询的职位
	Resumes []RoleResumeInfo `json:"resumes"` // 该职位下的简历
}

// ResumeDetailResponse 单份简历详情响应
type ResumeDetailResponse struct {
	FileName   string `json:"filename"`    // 文件名
	Role       string `json:"role"`        // 职位标签
	Content    string `json:"content"`     // 拼接后的简历内容
	ChunkCount int    `json:"chunk_count"` // 分块数量
}

// QASourceInfo 问答来源信息
type QASourceInfo struct {
	Text     string `json:"text"`     // 相关文本段落
	FileID   string `json:"file_id"`  // 文件ID
	FileName string `json:"filename"` // 文件名
	Role     string `json:"role"`     // 职位标签
	Page     int    `json:"page"`     // 页码
	Position int    `json:"position"` // 段落位置
}

// QAResponse 问答响应
type QAResponse struct {
	Question string         `json:"question"` // 用户问题
	Answer   string         `json:"answer"`   // 生成的回答
	Sources  []QASourceInfo `json:"sources"`  // 来源信息
}

// ConvertToSourceInfo 将向量数据库文档转换为来源信息
func ConvertToSourceInfo(docs []vectordb.Document) []QASourceInfo {
	if len(docs) == 0 {
		return []QASourceInfo{}
	}

	sources := make([]QASourceInfo, len(docs))
	for i, doc := range docs {
		sources[i] = QASourceInfo{
			Text:     doc.Text,
			FileID:   doc.FileID,
			FileName: doc.FileName,
			Role:     doc.Role,
			Page:     doc.Page,
			Position: doc.Position,
		}
	}
	return sources
}
