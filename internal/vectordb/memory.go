package vectordb

import (
	"fmt"
	"sync"
	"time"
)

// MemoryRepository 内存向量索引实现
// 用于开发和测试环境，不做持久化
type MemoryRepository struct {
	mu           sync.RWMutex
	dimension    int                 // 向量维度
	distType     DistanceType        // 距离计算类型
	documents    map[string]Document // ID到文档的映射
	fileToDocIDs map[string][]string // 文件ID到文档ID的映射
	insertOrder  []string            // 插入顺序，保证遍历结果可复现
	closed       bool
}

// NewMemoryRepository 创建内存向量索引
func NewMemoryRepository(config Config) (Repository, error) {
	if config.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}

	distType := config.DistanceType
	if distType != Cosine && distType != DotProduct && distType != Euclidean {
		distType = Cosine
	}

	return &MemoryRepository{
		dimension:    config.Dimension,
		distType:     distType,
		documents:    make(map[string]Document),
		fileToDocIDs: make(map[string][]string),
	}, nil
}

// prepare 校验并规范化待入库的文档
func (r *MemoryRepository) prepare(doc *Document) error {
	if doc.ID == "" {
		return ErrInvalidID
	}
	if err := ValidateVector(doc.Vector, r.dimension); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]interface{})
	}
	// 余弦距离下先归一化，搜索时只需要算点积
	if r.distType == Cosine {
		doc.Vector = normalizeVector(doc.Vector)
	}
	return nil
}

// store 写入单个文档，调用方必须持有写锁
func (r *MemoryRepository) store(doc Document) {
	if _, exists := r.documents[doc.ID]; !exists {
		r.insertOrder = append(r.insertOrder, doc.ID)
		r.fileToDocIDs[doc.FileID] = append(r.fileToDocIDs[doc.FileID], doc.ID)
	}
	r.documents[doc.ID] = doc
}

// Add 添加单个文档
func (r *MemoryRepository) Add(doc Document) error {
	if err := r.prepare(&doc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrIndexClosed
	}
	r.store(doc)
	return nil
}

// AddBatch 批量添加文档
func (r *MemoryRepository) AddBatch(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	for i := range docs {
		if err := r.prepare(&docs[i]); err != nil {
			return fmt.Errorf("invalid document %s: %w", docs[i].ID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrIndexClosed
	}
	for _, doc := range docs {
		r.store(doc)
	}
	return nil
}

// Get 获取单个文档
func (r *MemoryRepository) Get(id string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// DeleteByFileID 删除指定文件的所有分块
func (r *MemoryRepository) DeleteByFileID(fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docIDs, exists := r.fileToDocIDs[fileID]
	if !exists {
		return nil
	}

	removed := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		delete(r.documents, id)
		removed[id] = true
	}
	delete(r.fileToDocIDs, fileID)

	kept := r.insertOrder[:0]
	for _, id := range r.insertOrder {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	r.insertOrder = kept

	return nil
}

// Reset 清空整个索引
func (r *MemoryRepository) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrIndexClosed
	}

	r.documents = make(map[string]Document)
	r.fileToDocIDs = make(map[string][]string)
	r.insertOrder = nil
	return nil
}

// Search 相似度搜索
// 按插入顺序线性扫描，空索引返回ErrIndexEmpty
func (r *MemoryRepository) Search(vector []float32, filter SearchFilter) ([]SearchResult, error) {
	if err := ValidateVector(vector, r.dimension); err != nil {
		return nil, err
	}

	if r.distType == Cosine {
		vector = normalizeVector(vector)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrIndexClosed
	}
	if len(r.documents) == 0 {
		return nil, ErrIndexEmpty
	}

	var results []SearchResult
	for _, id := range r.insertOrder {
		doc, exists := r.documents[id]
		if !exists {
			continue
		}

		if len(filter.FileIDs) > 0 && !containsString(filter.FileIDs, doc.FileID) {
			continue
		}
		if !matchMetadata(doc.Metadata, filter.Metadata) {
			continue
		}

		dist, err := ComputeDistance(vector, doc.Vector, r.distType)
		if err != nil {
			return nil, err
		}

		score := DistanceToScore(dist, r.distType)
		if score < filter.MinScore {
			continue
		}

		results = append(results, SearchResult{Document: doc, Score: score})
	}

	SortSearchResults(results)

	if filter.MaxResults > 0 && len(results) > filter.MaxResults {
		results = results[:filter.MaxResults]
	}

	return results, nil
}

// Count 获取文档总数
func (r *MemoryRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0, ErrIndexClosed
	}
	return len(r.documents), nil
}

// GetDimension 返回向量维数
func (r *MemoryRepository) GetDimension() int {
	return r.dimension
}

// Close 关闭索引
func (r *MemoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.documents = nil
	r.fileToDocIDs = nil
	r.insertOrder = nil
	return nil
}

// containsString 检查字符串切片中是否包含特定值
func containsString(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// 在包初始化时注册内存实现
func init() {
	RegisterRepository("memory", NewMemoryRepository)
}
