package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage 本地文件存储实现
// 简历统一放在一个上传目录下，以原始文件名存储
type LocalStorage struct {
	basePath string // 基础存储路径
}

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string // 本地存储路径
}

// NewLocalStorage 创建本地存储实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %v", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %v", err)
	}

	return &LocalStorage{
		basePath: absPath,
	}, nil
}

// Save 保存文件到本地存储
// 同名文件直接覆盖，重新上传即为更新简历
func (s *LocalStorage) Save(reader io.Reader, filename string) (FileInfo, error) {
	name := sanitizeFileName(filename)
	if name == "" {
		return FileInfo{}, fmt.Errorf("invalid file name: %s", filename)
	}

	filePath := filepath.Join(s.basePath, name)

	file, err := os.Create(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to write file: %v", err)
	}

	return FileInfo{
		ID:       uuid.New().String(),
		Name:     name,
		Size:     size,
		MimeType: getMimeType(name),
		Path:     filePath,
	}, nil
}

// Get 根据文件名获取文件内容
func (s *LocalStorage) Get(filename string) (io.ReadCloser, error) {
	filePath := filepath.Join(s.basePath, sanitizeFileName(filename))

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s not found", filename)
		}
		return nil, fmt.Errorf("failed to open file: %v", err)
	}

	return file, nil
}

// Delete 根据文件名删除文件
func (s *LocalStorage) Delete(filename string) error {
	filePath := filepath.Join(s.basePath, sanitizeFileName(filename))

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %s not found", filename)
		}
		return fmt.Errorf("failed to delete file: %v", err)
	}

	return nil
}

// List 列出所有简历文件
func (s *LocalStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %v", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			ID:       entry.Name(),
			Name:     entry.Name(),
			Size:     info.Size(),
			MimeType: getMimeType(entry.Name()),
			Path:     filepath.Join(s.basePath, entry.Name()),
		})
	}

	return files, nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(filename string) (bool, error) {
	filePath := filepath.Join(s.basePath, sanitizeFileName(filename))

	_, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// sanitizeFileName 去掉路径分隔符，防止写出上传目录之外
func sanitizeFileName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// getMimeType 简单根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
