package vectordb

import (
	"errors"
	"time"
)

// 常用错误定义
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyVector      = errors.New("empty vector")
	ErrInvalidID        = errors.New("invalid document ID")
	ErrInvalidDimension = errors.New("vector dimension mismatch")
	// ErrIndexEmpty 索引中没有任何文档
	// 调用方据此区分"索引还没建好"和"搜索没有命中"
	ErrIndexEmpty = errors.New("vector index is empty")
	// ErrIndexClosed 索引已关闭
	ErrIndexClosed = errors.New("vector index is closed")
)

// 元数据的标准键名
// 简历分块入库时这些字段会同时写入结构化字段和Metadata，
// 以便不支持结构化过滤的后端也能按元数据做尽力而为的过滤
const (
	MetaKeyFileName   = "filename"
	MetaKeyRole       = "role"
	MetaKeySourcePath = "source_path"
	MetaKeyPage       = "page"
)

// Document 简历分块的向量化存储模型
// 每条记录对应一个文本分块及其元数据
type Document struct {
	ID         string                 // 唯一标识符
	FileID     string                 // 所属文件ID
	FileName   string                 // 简历文件名
	Role       string                 // 打标得到的职位标签
	SourcePath string                 // 源文件绝对路径（仅用于诊断）
	Page       int                    // 所属页码（从1开始）
	Position   int                    // 在原文档中的分块位置
	Text       string                 // 分块文本内容
	Vector     []float32              // 向量表示
	CreatedAt  time.Time              // 创建时间
	Metadata   map[string]interface{} // 附加元数据
}

// DistanceType 向量距离计算方法
type DistanceType string

const (
	// Cosine 余弦相似度
	Cosine DistanceType = "cosine"
	// DotProduct 点积
	DotProduct DistanceType = "dot"
	// Euclidean 欧几里得距离
	Euclidean DistanceType = "l2"
)

// SearchResult 搜索结果
type SearchResult struct {
	Document Document // 文档对象
	Score    float32  // 相似度得分
}

// SearchFilter 搜索过滤条件
// Metadata过滤是尽力而为的：具体后端可以忽略它，
// 调用方必须自己对结果做精确的二次过滤
type SearchFilter struct {
	FileIDs    []string               // 按文件ID过滤
	Metadata   map[string]interface{} // 按元数据过滤（尽力而为）
	MinScore   float32                // 最小相似度分数
	MaxResults int                    // 最大返回结果数
}

// DefaultSearchFilter 返回默认的搜索过滤器
func DefaultSearchFilter() SearchFilter {
	return SearchFilter{
		MinScore:   0.0,
		MaxResults: 8,
	}
}

// Repository 向量索引仓库接口
// 索引的生命周期是整体重建：每次处理简历时先Reset再AddBatch，
// 不保证单条删除后的增量一致性
type Repository interface {
	// Add 添加单个文档
	Add(doc Document) error

	// AddBatch 批量添加文档
	AddBatch(docs []Document) error

	// Get 获取单个文档
	Get(id string) (Document, error)

	// DeleteByFileID 删除指定文件的所有分块
	DeleteByFileID(fileID string) error

	// Reset 清空整个索引（含持久化内容），用于整体重建
	Reset() error

	// Search 相似度搜索
	// 索引为空时返回ErrIndexEmpty而不是空结果
	Search(vector []float32, filter SearchFilter) ([]SearchResult, error)

	// Count 获取文档总数
	Count() (int, error)

	// GetDimension 返回向量维数
	GetDimension() int

	// Close 关闭索引
	Close() error
}

// Config 向量索引配置
type Config struct {
	Type              string       // 索引类型，如 "memory", "faiss"
	Path              string       // 持久化文件路径
	Dimension         int          // 向量维度
	DistanceType      DistanceType // 距离计算类型
	CreateIfNotExists bool         // 如果不存在是否创建
	InMemory          bool         // 是否仅在内存中运行
}

// Factory 向量索引工厂函数类型
type Factory func(config Config) (Repository, error)

// RepositoryRegistry 注册可用的向量索引实现
var RepositoryRegistry = map[string]Factory{}

// RegisterRepository 注册向量索引工厂函数
func RegisterRepository(name string, factory Factory) {
	RepositoryRegistry[name] = factory
}

// NewRepository 根据配置创建向量索引实例
func NewRepository(config Config) (Repository, error) {
	factory, ok := RepositoryRegistry[config.Type]
	if !ok {
		// 默认使用内存实现
		factory = NewMemoryRepository
	}
	return factory(config)
}
