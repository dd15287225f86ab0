package repository

import (
	"errors"
	"fmt"

	"github.com/fyerfyer/resume-assistant/internal/database"
	"github.com/fyerfyer/resume-assistant/internal/models"
	"gorm.io/gorm"
)

// resumeRepository 简历仓储实现
type resumeRepository struct {
	db *gorm.DB // 数据库连接
}

// NewResumeRepository 创建简历仓储实例
func NewResumeRepository() ResumeRepository {
	return &resumeRepository{
		db: database.MustDB(),
	}
}

// NewResumeRepositoryWithDB 使用指定的数据库连接创建简历仓储实例
func NewResumeRepositoryWithDB(db *gorm.DB) ResumeRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &resumeRepository{db: db}
}

// Create 创建简历记录
func (r *resumeRepository) Create(resume *models.Resume) error {
	if resume.ID == "" {
		return errors.New("resume ID cannot be empty")
	}

	return r.db.Create(resume).Error
}

// Update 更新简历记录
func (r *resumeRepository) Update(resume *models.Resume) error {
	if resume.ID == "" {
		return errors.New("resume ID cannot be empty")
	}

	return r.db.Save(resume).Error
}

// GetByID 根据ID获取简历
func (r *resumeRepository) GetByID(id string) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.Where("id = ?", id).First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrResumeNotFound
		}
		return nil, err
	}
	return &resume, nil
}

// GetByFileName 根据文件名获取简历
func (r *resumeRepository) GetByFileName(fileName string) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.Where("file_name = ?", fileName).First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrResumeNotFound
		}
		return nil, err
	}
	return &resume, nil
}

// List 列出简历列表，支持分页和筛选
func (r *resumeRepository) List(offset, limit int, filters map[string]interface{}) ([]*models.Resume, int64, error) {
	var resumes []*models.Resume
	var total int64

	query := r.db.Model(&models.Resume{})

	if filters != nil {
		// 状态过滤
		if status, ok := filters["status"]; ok {
			statusStr := fmt.Sprintf("%v", status)
			if statusStr != "" {
				query = query.Where("status = ?", statusStr)
			}
		}

		// 职位标签过滤
		if role, ok := filters["role"].(string); ok && role != "" {
			query = query.Where("role = ?", role)
		}

		// 文件名过滤
		if fileName, ok := filters["file_name"].(string); ok && fileName != "" {
			query = query.Where("file_name LIKE ?", "%"+fileName+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&resumes).Error
	if err != nil {
		return nil, 0, err
	}

	return resumes, total, nil
}

// Delete 删除简历及其分块记录
func (r *resumeRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resume_id = ?", id).Delete(&models.ResumeChunk{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Resume{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrResumeNotFound
		}
		return nil
	})
}

// DeleteAll 删除所有简历及分块记录
// 向量索引重建前清空元数据，保证两边一致
func (r *resumeRepository) DeleteAll() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ResumeChunk{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.Resume{}).Error
	})
}

// UpdateStatus 更新简历状态
func (r *resumeRepository) UpdateStatus(id string, status models.ResumeStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status": status,
		"error":  errorMsg,
	}

	result := r.db.Model(&models.Resume{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrResumeNotFound
	}
	return nil
}

// SaveChunks 批量保存简历分块
func (r *resumeRepository) SaveChunks(chunks []*models.ResumeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return r.db.CreateInBatches(chunks, 100).Error
}

// GetChunks 获取简历的所有分块
func (r *resumeRepository) GetChunks(resumeID string) ([]*models.ResumeChunk, error) {
	var chunks []*models.ResumeChunk
	err := r.db.Where("resume_id = ?", resumeID).
		Order("page ASC, position ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// CountChunks 统计简历的分块数量
func (r *resumeRepository) CountChunks(resumeID string) (int, error) {
	var count int64
	err := r.db.Model(&models.ResumeChunk{}).
		Where("resume_id = ?", resumeID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteChunks 删除简历的所有分块
func (r *resumeRepository) DeleteChunks(resumeID string) error {
	return r.db.Where("resume_id = ?", resumeID).Delete(&models.ResumeChunk{}).Error
}
