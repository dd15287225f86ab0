package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResumeStatus 简历处理状态类型
type ResumeStatus string

const (
	// ResumeStatusUploaded 简历已上传，等待处理
	ResumeStatusUploaded ResumeStatus = "uploaded"
	// ResumeStatusProcessing 简历处理中
	ResumeStatusProcessing ResumeStatus = "processing"
	// ResumeStatusCompleted 简历处理完成
	ResumeStatusCompleted ResumeStatus = "completed"
	// ResumeStatusFailed 简历处理失败
	ResumeStatusFailed ResumeStatus = "failed"
)

// Resume 简历数据模型
// 用于存储简历文件的元数据信息
type Resume struct {
	ID          string         `gorm:"primaryKey"`         // 简历ID，主键
	FileName    string         `gorm:"not null;index"`     // 文件名
	FileType    string         `gorm:"not null"`           // 文件类型
	FilePath    string         `gorm:"not null"`           // 文件路径
	FileSize    int64          `gorm:"not null"`           // 文件大小（字节）
	Status      ResumeStatus   `gorm:"not null;index"`     // 处理状态
	Role        string         `gorm:"size:50;index"`      // 识别出的职位标签（取首页标签）
	PageCount   int            `gorm:"not null;default:0"` // 页数
	ChunkCount  int            `gorm:"not null;default:0"` // 分块数量
	UploadedAt  time.Time      `gorm:"not null;index"`     // 上传时间
	ProcessedAt *time.Time     `gorm:"index"`              // 处理完成时间
	UpdatedAt   time.Time      `gorm:"not null;index"`     // 更新时间
	Error       string         `gorm:"type:text"`          // 错误信息
	Metadata    datatypes.JSON `gorm:"type:json"`          // 元数据，JSON格式
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *Resume) BeforeCreate(tx *gorm.DB) (err error) {
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *Resume) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Resume) TableName() string {
	return "resumes"
}

// ResumeChunk 简历分块数据模型
// 用于在数据库中跟踪简历的文本分块
type ResumeChunk struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"` // 主键ID
	ResumeID  string         `gorm:"not null;index"`           // 所属简历ID
	ChunkID   string         `gorm:"not null;uniqueIndex"`     // 分块唯一ID
	Role      string         `gorm:"size:50;index"`            // 分块所属页的职位标签
	Page      int            `gorm:"not null"`                 // 来源页码
	Position  int            `gorm:"not null"`                 // 分块在页内的序号
	Text      string         `gorm:"type:text;not null"`       // 分块文本内容
	VectorID  string         `gorm:"size:50"`                  // 向量数据库中的ID
	CreatedAt time.Time      `gorm:"not null"`                 // 创建时间
	UpdatedAt time.Time      `gorm:"not null"`                 // 更新时间
	Metadata  datatypes.JSON `gorm:"type:json"`                // 分块元数据
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (rc *ResumeChunk) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	rc.CreatedAt = now
	rc.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (rc *ResumeChunk) BeforeUpdate(tx *gorm.DB) (err error) {
	rc.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (ResumeChunk) TableName() string {
	return "resume_chunks"
}
