package repository

import "github.com/fyerfyer/resume-assistant/internal/models"

// ResumeRepository 简历仓储接口
// 负责简历元数据和分块记录的存储和检索
type ResumeRepository interface {
	// Create 创建简历记录
	Create(resume *models.Resume) error

	// Update 更新简历记录
	Update(resume *models.Resume) error

	// GetByID 根据ID获取简历
	GetByID(id string) (*models.Resume, error)

	// GetByFileName 根据文件名获取简历
	GetByFileName(fileName string) (*models.Resume, error)

	// List 列出简历列表，支持分页和筛选
	List(offset, limit int, filters map[string]interface{}) ([]*models.Resume, int64, error)

	// Delete 删除简历及其分块记录
	Delete(id string) error

	// DeleteAll 删除所有简历及分块记录，重建索引前调用
	DeleteAll() error

	// UpdateStatus 更新简历状态
	UpdateStatus(id string, status models.ResumeStatus, errorMsg string) error

	// SaveChunks 批量保存简历分块
	SaveChunks(chunks []*models.ResumeChunk) error

	// GetChunks 获取简历的所有分块
	GetChunks(resumeID string) ([]*models.ResumeChunk, error)

	// CountChunks 统计简历的分块数量
	CountChunks(resumeID string) (int, error)

	// DeleteChunks 删除简历的所有分块
	DeleteChunks(resumeID string) error
}
