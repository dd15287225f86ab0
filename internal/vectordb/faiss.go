package vectordb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	faiss "github.com/DataIntelligenceCrew/go-faiss"
)

// FaissRepository 基于Faiss的持久化向量索引
// 索引文件和元数据文件一起落盘在固定路径，整体重建时一起删除
type FaissRepository struct {
	mu           sync.RWMutex
	index        faiss.Index
	documents    map[string]Document // ID到文档的映射
	fileToDocIDs map[string][]string // 文件ID到文档ID的映射
	positionToID map[int]string      // Faiss内部位置到文档ID的映射
	idToPosition map[string]int
	indexPath    string
	metaPath     string
	dimension    int
	distanceType DistanceType
	saveOnClose  bool
	closed       bool
}

// faissMetadata 与索引文件并排落盘的元数据结构
type faissMetadata struct {
	Documents    map[string]Document `json:"documents"`
	FileToDocIDs map[string][]string `json:"file_to_doc_ids"`
	IDToPosition map[string]int      `json:"id_to_position"`
}

// NewFaissRepository 创建Faiss向量索引
// 持久化路径上已有索引文件时会加载它，否则新建一个空索引
func NewFaissRepository(config Config) (Repository, error) {
	if config.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}

	distType := config.DistanceType
	if distType == "" {
		distType = Cosine
	}

	indexPath := config.Path
	metaPath := ""
	if indexPath != "" {
		if !config.InMemory {
			if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create index directory: %v", err)
			}
		}
		metaPath = indexPath + ".meta.json"
	}

	repo := &FaissRepository{
		documents:    make(map[string]Document),
		fileToDocIDs: make(map[string][]string),
		positionToID: make(map[int]string),
		idToPosition: make(map[string]int),
		indexPath:    indexPath,
		metaPath:     metaPath,
		dimension:    config.Dimension,
		distanceType: distType,
		saveOnClose:  true,
	}

	var index faiss.Index
	var err error

	if indexPath != "" && !config.InMemory && fileExists(indexPath) {
		index, err = faiss.ReadIndex(indexPath, 0)
		if err != nil {
			if !config.CreateIfNotExists {
				return nil, fmt.Errorf("failed to read index file: %v", err)
			}
			index, err = newFlatIndex(config.Dimension, distType)
			if err != nil {
				return nil, err
			}
		} else if err := repo.loadMetadata(); err != nil {
			return nil, fmt.Errorf("failed to load index metadata: %v", err)
		}
	} else {
		index, err = newFlatIndex(config.Dimension, distType)
		if err != nil {
			return nil, err
		}
	}

	repo.index = index
	return repo, nil
}

// newFlatIndex 创建扁平Faiss索引
func newFlatIndex(dimension int, distType DistanceType) (faiss.Index, error) {
	var metric int
	switch distType {
	case Cosine, DotProduct:
		metric = faiss.MetricInnerProduct
	case Euclidean:
		metric = faiss.MetricL2
	default:
		metric = faiss.MetricL2
	}

	index, err := faiss.NewIndexFlat(dimension, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to create faiss index: %v", err)
	}
	return index, nil
}

// prepare 校验并规范化待入库的文档
func (r *FaissRepository) prepare(doc *Document) error {
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
	if r.distanceType == Cosine {
		doc.Vector = normalizeVector(doc.Vector)
	}
	return nil
}

// Add 添加单个文档
func (r *FaissRepository) Add(doc Document) error {
	return r.AddBatch([]Document{doc})
}

// AddBatch 批量添加文档
func (r *FaissRepository) AddBatch(docs []Document) error {
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

	startPos := int(r.index.Ntotal())
	for _, doc := range docs {
		if err := r.index.Add(doc.Vector); err != nil {
			return fmt.Errorf("failed to add vector to index: %v", err)
		}
	}

	for i, doc := range docs {
		pos := startPos + i
		r.documents[doc.ID] = doc
		r.idToPosition[doc.ID] = pos
		r.positionToID[pos] = doc.ID
		r.fileToDocIDs[doc.FileID] = append(r.fileToDocIDs[doc.FileID], doc.ID)
	}

	return nil
}

// Get 获取单个文档
func (r *FaissRepository) Get(id string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// DeleteByFileID 删除指定文件的所有分块
// 只移除元数据映射，向量槽位留在Faiss索引里直到下一次Reset；
// 搜索时找不到对应文档的槽位会被跳过
func (r *FaissRepository) DeleteByFileID(fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docIDs, exists := r.fileToDocIDs[fileID]
	if !exists {
		return nil
	}

	for _, id := range docIDs {
		if pos, ok := r.idToPosition[id]; ok {
			delete(r.positionToID, pos)
		}
		delete(r.documents, id)
		delete(r.idToPosition, id)
	}
	delete(r.fileToDocIDs, fileID)

	return nil
}

// Reset 清空整个索引，包括磁盘上的索引文件和元数据文件
func (r *FaissRepository) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrIndexClosed
	}

	if r.indexPath != "" {
		if err := os.Remove(r.indexPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove index file: %v", err)
		}
	}
	if r.metaPath != "" {
		if err := os.Remove(r.metaPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove metadata file: %v", err)
		}
	}

	index, err := newFlatIndex(r.dimension, r.distanceType)
	if err != nil {
		return err
	}

	r.index = index
	r.documents = make(map[string]Document)
	r.fileToDocIDs = make(map[string][]string)
	r.positionToID = make(map[int]string)
	r.idToPosition = make(map[string]int)
	return nil
}

// Search 相似度搜索
func (r *FaissRepository) Search(vector []float32, filter SearchFilter) ([]SearchResult, error) {
	if err := ValidateVector(vector, r.dimension); err != nil {
		return nil, err
	}

	if r.distanceType == Cosine {
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

	k := filter.MaxResults
	if k <= 0 {
		k = 10
	}

	// 多查一些候选，补偿被过滤条件和已删除槽位吃掉的名额
	queryLimit := k * 2
	if total := int(r.index.Ntotal()); queryLimit > total {
		queryLimit = total
	}

	distances, indices, err := r.index.Search(vector, int64(queryLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %v", err)
	}

	var results []SearchResult
	for i := 0; i < len(indices); i++ {
		idx := indices[i]
		if idx < 0 {
			continue
		}

		docID, ok := r.positionToID[int(idx)]
		if !ok {
			// 已删除的槽位
			continue
		}
		doc := r.documents[docID]

		if len(filter.FileIDs) > 0 && !containsString(filter.FileIDs, doc.FileID) {
			continue
		}
		if !matchMetadata(doc.Metadata, filter.Metadata) {
			continue
		}

		score := DistanceToScore(distances[i], r.distanceType)
		if score < filter.MinScore {
			continue
		}

		results = append(results, SearchResult{Document: doc, Score: score})
		if len(results) >= k {
			break
		}
	}

	SortSearchResults(results)
	return results, nil
}

// Count 获取文档总数
func (r *FaissRepository) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0, ErrIndexClosed
	}
	return len(r.documents), nil
}

// GetDimension 返回向量维数
func (r *FaissRepository) GetDimension() int {
	return r.dimension
}

// Close 关闭索引，必要时先落盘
func (r *FaissRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	if r.saveOnClose && r.indexPath != "" && len(r.documents) > 0 {
		if err := r.saveIndex(); err != nil {
			return fmt.Errorf("failed to save index on close: %v", err)
		}
	}

	r.closed = true
	return nil
}

// saveIndex 保存索引和元数据到磁盘
func (r *FaissRepository) saveIndex() error {
	if r.indexPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.indexPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %v", err)
	}

	if err := faiss.WriteIndex(r.index, r.indexPath); err != nil {
		return fmt.Errorf("failed to write index file: %v", err)
	}

	meta := faissMetadata{
		Documents:    r.documents,
		FileToDocIDs: r.fileToDocIDs,
		IDToPosition: r.idToPosition,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal index metadata: %v", err)
	}
	if err := os.WriteFile(r.metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %v", err)
	}

	return nil
}

// loadMetadata 从磁盘加载元数据并重建位置映射
func (r *FaissRepository) loadMetadata() error {
	if r.metaPath == "" || !fileExists(r.metaPath) {
		return nil
	}

	data, err := os.ReadFile(r.metaPath)
	if err != nil {
		return fmt.Errorf("failed to read metadata file: %v", err)
	}

	var meta faissMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %v", err)
	}

	r.documents = meta.Documents
	r.fileToDocIDs = meta.FileToDocIDs
	r.idToPosition = meta.IDToPosition
	r.positionToID = make(map[int]string, len(meta.IDToPosition))
	for id, pos := range meta.IDToPosition {
		r.positionToID[pos] = id
	}

	return nil
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func init() {
	RegisterRepository("faiss", NewFaissRepository)
}
