package storage

import (
	"io"
)

// FileInfo 简历文件元数据结构
type FileInfo struct {
	ID       string // 文件唯一标识符
	Name     string // 文件名，同名上传视为同一份简历
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Path     string // 内部存储路径(实现相关)
}

// Storage 简历文件存储接口
// 文件名是简历的外部标识，检索和溯源都以文件名为准，
// 因此所有操作都以文件名为键，同名上传覆盖旧文件
type Storage interface {
	// Save 保存文件并返回文件信息
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Get 根据文件名获取文件内容
	Get(filename string) (io.ReadCloser, error)

	// Delete 根据文件名删除文件
	Delete(filename string) error

	// List 列出所有简历文件
	List() ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(filename string) (bool, error)
}

// Factory 存储实现的工厂函数
// 用于根据配置创建不同类型的存储实现
type Factory func(cfg interface{}) (Storage, error)
