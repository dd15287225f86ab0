package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fyerfyer/resume-assistant/internal/document"
	"github.com/fyerfyer/resume-assistant/internal/embedding"
	"github.com/fyerfyer/resume-assistant/internal/models"
	"github.com/fyerfyer/resume-assistant/internal/repository"
	"github.com/fyerfyer/resume-assistant/internal/resume"
	"github.com/fyerfyer/resume-assistant/internal/vectordb"
	"github.com/fyerfyer/resume-assistant/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IndexGuard 索引重建互斥保护
// 重建是删除后重建的全量操作，期间不允许任何检索进行，
// 检索方持读锁，重建方持写锁
type IndexGuard struct {
	mu sync.RWMutex
}

// NewIndexGuard 创建索引互斥保护
func NewIndexGuard() *IndexGuard {
	return &IndexGuard{}
}

// Lock 获取重建写锁
func (g *IndexGuard) Lock() { g.mu.Lock() }

// Unlock 释放重建写锁
func (g *IndexGuard) Unlock() { g.mu.Unlock() }

// RLock 获取检索读锁
func (g *IndexGuard) RLock() { g.mu.RLock() }

// RUnlock 释放检索读锁
func (g *IndexGuard) RUnlock() { g.mu.RUnlock() }

// ProcessResult 一次处理运行的结果
// 单个文件失败不会中止整个批次，失败原因按文件记录
type ProcessResult struct {
	Processed  []string          // 成功处理的文件名
	Failed     map[string]string // 失败的文件名及原因
	ChunkCount int               // 入库的分块总数
}

// ResumeService 简历处理服务
// 负责协调简历上传、解析、职位打标、分段、向量化和入库
type ResumeService struct {
	storage    storage.Storage             // 文件存储服务
	splitter   document.Splitter           // 文本分段器
	embedder   embedding.Client            // 嵌入模型客户端
	vectorDB   vectordb.Repository         // 向量数据库
	repo       repository.ResumeRepository // 简历元数据存储
	guard      *IndexGuard                 // 索引重建互斥
	batchSize  int                         // 批处理大小
	maxWorkers int                         // 嵌入批处理并行度
	timeout    time.Duration               // 处理超时时间
	logger     *logrus.Logger              // 日志记录器
}

// ResumeOption 简历服务配置选项
type ResumeOption func(*ResumeService)

// NewResumeService 创建简历处理服务
func NewResumeService(
	store storage.Storage,
	splitter document.Splitter,
	embedder embedding.Client,
	vectorDB vectordb.Repository,
	opts ...ResumeOption,
) *ResumeService {
	srv := &ResumeService{
		storage:    store,
		splitter:   splitter,
		embedder:   embedder,
		vectorDB:   vectorDB,
		guard:      NewIndexGuard(),
		batchSize:  16,
		maxWorkers: 4,
		timeout:    time.Minute * 5,
		logger:     logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithBatchSize 设置批处理大小
func WithBatchSize(size int) ResumeOption {
	return func(s *ResumeService) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithMaxWorkers 设置嵌入批处理并行度
func WithMaxWorkers(workers int) ResumeOption {
	return func(s *ResumeService) {
		if workers > 0 {
			s.maxWorkers = workers
		}
	}
}

// WithTimeout 设置处理超时时间
func WithTimeout(timeout time.Duration) ResumeOption {
	return func(s *ResumeService) {
		s.timeout = timeout
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) ResumeOption {
	return func(s *ResumeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResumeRepository 设置简历仓储
func WithResumeRepository(repo repository.ResumeRepository) ResumeOption {
	return func(s *ResumeService) {
		s.repo = repo
	}
}

// WithIndexGuard 设置索引互斥保护
// 多个服务共享同一个guard时，重建和检索才真正互斥
func WithIndexGuard(guard *IndexGuard) ResumeOption {
	return func(s *ResumeService) {
		if guard != nil {
			s.guard = guard
		}
	}
}

// Guard 返回索引互斥保护，供检索和问答服务共享
func (s *ResumeService) Guard() *IndexGuard {
	return s.guard
}

// Upload 保存上传的简历文件
// 同名上传覆盖旧文件，新内容在下一次处理运行时生效
func (s *ResumeService) Upload(ctx context.Context, reader io.Reader, filename string) (storage.FileInfo, error) {
	if _, err := document.ParserFactory(filename); err != nil {
		return storage.FileInfo{}, fmt.Errorf("unsupported resume format: %s", filepath.Ext(filename))
	}

	info, err := s.storage.Save(reader, filename)
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("failed to save resume file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"file_name": info.Name,
		"size":      info.Size,
	}).Info("Resume file uploaded")

	return info, nil
}

// ProcessAll 处理存储中的全部简历
// 索引是全量重建的：先销毁旧索引，再从头解析、打标、分段、
// 向量化并入库；单个文件的失败记录后跳过，不中止批次
func (s *ResumeService) ProcessAll(ctx context.Context) (*ProcessResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	files, err := s.storage.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list resume files: %w", err)
	}

	if len(files) == 0 {
		return nil, errors.New("no resume files to process")
	}

	// 重建期间阻塞所有检索
	s.guard.Lock()
	defer s.guard.Unlock()

	s.logger.WithField("file_count", len(files)).Info("Starting resume processing run")

	// 销毁旧索引，本次运行从零重建
	if err := s.vectorDB.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset vector index: %w", err)
	}

	// 元数据库与索引保持一致，一并清空
	if s.repo != nil {
		if err := s.repo.DeleteAll(); err != nil {
			return nil, fmt.Errorf("failed to clear resume metadata: %w", err)
		}
	}

	result := &ProcessResult{
		Failed: make(map[string]string),
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		chunkCount, err := s.processFile(ctx, file)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"file_name": file.Name,
				"error":     err,
			}).Warn("Skipping resume file")
			result.Failed[file.Name] = err.Error()
			continue
		}

		result.Processed = append(result.Processed, file.Name)
		result.ChunkCount += chunkCount
	}

	s.logger.WithFields(logrus.Fields{
		"processed":   len(result.Processed),
		"failed":      len(result.Failed),
		"chunk_count": result.ChunkCount,
	}).Info("Resume processing run completed")

	return result, nil
}

// processFile 处理单份简历：解析、按页打标、分段、向量化、入库
func (s *ResumeService) processFile(ctx context.Context, file storage.FileInfo) (int, error) {
	pages, sourcePath, err := s.parseFile(file)
	if err != nil {
		return 0, err
	}

	resumeID := uuid.New().String()

	// 职位打标以页为单位，页内的分块继承该页的标签
	type taggedChunk struct {
		role     resume.Role
		page     int
		position int
		text     string
	}

	var chunks []taggedChunk
	for _, page := range pages {
		role := resume.TagRole(page.Text, file.Name)

		contents, err := s.splitter.Split(page.Text)
		if err != nil {
			return 0, fmt.Errorf("failed to split page %d: %w", page.Number, err)
		}

		for _, content := range contents {
			chunks = append(chunks, taggedChunk{
				role:     role,
				page:     page.Number,
				position: content.Index,
				text:     content.Text,
			})
		}
	}

	if len(chunks) == 0 {
		return 0, errors.New("no text content after segmentation")
	}

	// 并行批量生成向量
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.text
	}

	processor := embedding.NewBatchProcessor(s.embedder, s.batchSize, s.maxWorkers)
	vectors, err := processor.Process(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	// 构建索引条目和元数据记录
	docs := make([]vectordb.Document, len(chunks))
	dbChunks := make([]*models.ResumeChunk, len(chunks))

	for i, chunk := range chunks {
		chunkID := fmt.Sprintf("%s_%d_%d", resumeID, chunk.page, chunk.position)

		docs[i] = vectordb.Document{
			ID:         chunkID,
			FileID:     resumeID,
			FileName:   file.Name,
			Role:       string(chunk.role),
			SourcePath: sourcePath,
			Page:       chunk.page,
			Position:   chunk.position,
			Text:       chunk.text,
			Vector:     vectors[i],
			CreatedAt:  time.Now(),
			Metadata: map[string]interface{}{
				vectordb.MetaKeyFileName:   file.Name,
				vectordb.MetaKeyRole:       string(chunk.role),
				vectordb.MetaKeySourcePath: sourcePath,
				vectordb.MetaKeyPage:       chunk.page,
			},
		}

		dbChunks[i] = &models.ResumeChunk{
			ResumeID: resumeID,
			ChunkID:  chunkID,
			Role:     string(chunk.role),
			Page:     chunk.page,
			Position: chunk.position,
			Text:     chunk.text,
			VectorID: chunkID,
		}
	}

	if err := s.vectorDB.AddBatch(docs); err != nil {
		return 0, fmt.Errorf("failed to store vectors: %w", err)
	}

	// 元数据持久化失败不影响索引结果，记录后继续
	if s.repo != nil {
		now := time.Now()
		record := &models.Resume{
			ID:          resumeID,
			FileName:    file.Name,
			FileType:    filepath.Ext(file.Name),
			FilePath:    file.Path,
			FileSize:    file.Size,
			Status:      models.ResumeStatusCompleted,
			Role:        string(chunks[0].role),
			PageCount:   len(pages),
			ChunkCount:  len(chunks),
			ProcessedAt: &now,
		}

		if err := s.repo.Create(record); err != nil {
			s.logger.WithError(err).Error("Failed to save resume metadata")
		} else if err := s.repo.SaveChunks(dbChunks); err != nil {
			s.logger.WithError(err).Error("Failed to save resume chunks")
		}
	}

	return len(chunks), nil
}

// parseFile 从存储读取文件并按页解析
// 解析器基于文件路径工作，非本地存储的文件先落到临时目录
func (s *ResumeService) parseFile(file storage.FileInfo) ([]document.Page, string, error) {
	parser, err := document.ParserFactory(file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("unsupported resume format: %w", err)
	}

	sourcePath := file.Path
	if _, statErr := os.Stat(sourcePath); statErr != nil {
		reader, err := s.storage.Get(file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read resume file: %w", err)
		}
		defer reader.Close()

		tmpFile, err := os.CreateTemp("", "resume_*"+filepath.Ext(file.Name))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create temp file: %w", err)
		}
		defer os.Remove(tmpFile.Name())

		if _, err := io.Copy(tmpFile, reader); err != nil {
			tmpFile.Close()
			return nil, "", fmt.Errorf("failed to copy resume file: %w", err)
		}
		tmpFile.Close()
		sourcePath = tmpFile.Name()
	}

	pages, err := parser.ParsePages(sourcePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse resume: %w", err)
	}

	return pages, file.Path, nil
}

// ListResumes 获取已处理的简历列表
func (s *ResumeService) ListResumes(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Resume, int64, error) {
	if s.repo == nil {
		return nil, 0, errors.New("resume repository not configured")
	}
	return s.repo.List(offset, limit, filters)
}

// DeleteResume 删除简历文件及其元数据和索引向量
func (s *ResumeService) DeleteResume(ctx context.Context, fileName string) error {
	if err := s.storage.Delete(fileName); err != nil {
		return fmt.Errorf("failed to delete resume file: %w", err)
	}

	if s.repo != nil {
		record, err := s.repo.GetByFileName(fileName)
		if err == nil {
			s.guard.Lock()
			if err := s.vectorDB.DeleteByFileID(record.ID); err != nil {
				s.logger.WithError(err).Warn("Failed to delete resume vectors")
			}
			s.guard.Unlock()

			if err := s.repo.Delete(record.ID); err != nil {
				s.logger.WithError(err).Warn("Failed to delete resume metadata")
			}
		}
	}

	s.logger.WithField("file_name", fileName).Info("Resume deleted")
	return nil
}
