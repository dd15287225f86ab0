package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyerfyer/resume-assistant/internal/cache"
	"github.com/fyerfyer/resume-assistant/internal/embedding"
	"github.com/fyerfyer/resume-assistant/internal/llm"
	"github.com/fyerfyer/resume-assistant/internal/resume"
	"github.com/fyerfyer/resume-assistant/internal/vectordb"
	"github.com/sirupsen/logrus"
)

// NoInfoAnswer 检索不到相关内容时的固定回答
const NoInfoAnswer = "I don't have that information in the provided resumes."

// AnalysisType 预设分析类型
type AnalysisType string

const (
	// AnalysisSkills 技能分析
	AnalysisSkills AnalysisType = "skills"
	// AnalysisExperience 工作经历分析
	AnalysisExperience AnalysisType = "experience"
	// AnalysisEducation 教育背景分析
	AnalysisEducation AnalysisType = "education"
	// AnalysisCompare 候选人对比
	AnalysisCompare AnalysisType = "compare"
)

// analysisQueries 预设分析的检索查询前缀
// 在用户输入前拼接领域词，提高检索召回
var analysisQueries = map[AnalysisType]string{
	AnalysisSkills:     "skills experience",
	AnalysisExperience: "work experience job position",
	AnalysisEducation:  "education degree university college",
	AnalysisCompare:    "compare candidates",
}

// QAService 简历问答服务
// 负责协调向量检索和大模型生成答案
type QAService struct {
	embedder    embedding.Client    // 嵌入模型客户端
	vectorDB    vectordb.Repository // 向量数据库
	rag         *llm.RAGService     // RAG服务
	cache       cache.Cache         // 问答缓存
	guard       *IndexGuard         // 索引重建互斥
	cacheTTL    time.Duration       // 缓存有效期
	searchLimit int                 // 检索结果数量限制
	minScore    float32             // 最低相似度分数
	logger      *logrus.Logger      // 日志记录器
}

// QAOption 问答服务配置选项
type QAOption func(*QAService)

// NewQAService 创建问答服务实例
func NewQAService(
	embedder embedding.Client,
	vectorDB vectordb.Repository,
	rag *llm.RAGService,
	qaCache cache.Cache,
	opts ...QAOption,
) *QAService {
	service := &QAService{
		embedder:    embedder,
		vectorDB:    vectorDB,
		rag:         rag,
		cache:       qaCache,
		guard:       NewIndexGuard(),
		cacheTTL:    24 * time.Hour,
		searchLimit: 8, // 多简历场景需要更多上下文
		minScore:    0,
		logger:      logrus.New(),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithCacheTTL 设置缓存时间
func WithCacheTTL(ttl time.Duration) QAOption {
	return func(s *QAService) {
		s.cacheTTL = ttl
	}
}

// WithSearchLimit 设置检索结果数量
func WithSearchLimit(limit int) QAOption {
	return func(s *QAService) {
		if limit > 0 {
			s.searchLimit = limit
		}
	}
}

// WithMinScore 设置最低相似度分数
func WithMinScore(score float32) QAOption {
	return func(s *QAService) {
		s.minScore = score
	}
}

// WithQALogger 设置日志记录器
func WithQALogger(logger *logrus.Logger) QAOption {
	return func(s *QAService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithQAGuard 设置索引互斥保护
func WithQAGuard(guard *IndexGuard) QAOption {
	return func(s *QAService) {
		if guard != nil {
			s.guard = guard
		}
	}
}

// Answer 回答关于简历的问题
// 返回回答文本和展示用的来源分块；来源经过姓名归属过滤，
// 但发送给大模型的上下文始终是完整的检索结果
func (s *QAService) Answer(ctx context.Context, question string) (string, []vectordb.Document, error) {
	if question == "" {
		return "", nil, fmt.Errorf("question cannot be empty")
	}

	// 1. 尝试从缓存获取
	cacheKey := cache.HashKey("qa", question)
	if answer, sources, ok := s.getCached(cacheKey); ok {
		return answer, resume.FilterSources(question, sources), nil
	}

	// 2. 将问题转换为向量
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	// 3. 检索相关分块
	s.guard.RLock()
	results, err := s.vectorDB.Search(vector, vectordb.SearchFilter{
		MinScore:   s.minScore,
		MaxResults: s.searchLimit,
	})
	s.guard.RUnlock()
	if err != nil {
		return "", nil, fmt.Errorf("search failed: %w", err)
	}

	// 没有相关内容是正常结果，不是错误
	if len(results) == 0 {
		s.cache.Set(cacheKey, NoInfoAnswer, s.cacheTTL)
		return NoInfoAnswer, nil, nil
	}

	// 4. 构建上下文并生成回答
	contexts := make([]llm.SourceReference, len(results))
	sources := make([]vectordb.Document, len(results))
	for i, result := range results {
		doc := result.Document
		contexts[i] = llm.SourceReference{
			ID:       doc.ID,
			FileID:   doc.FileID,
			FileName: doc.FileName,
			Role:     doc.Role,
			Content:  doc.Text,
		}
		sources[i] = doc
	}

	ragResponse, err := s.rag.Answer(ctx, question, contexts)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	// 5. 缓存结果
	s.setCached(cacheKey, ragResponse.Answer, sources)

	// 6. 来源归属过滤只影响展示，不影响已发送的上下文
	return ragResponse.Answer, resume.FilterSources(question, sources), nil
}

// Analyze 对指定方向做预设分析
// 在用户查询前拼接领域词后走普通问答流程
func (s *QAService) Analyze(ctx context.Context, analysisType AnalysisType, query string) (string, []vectordb.Document, error) {
	prefix, ok := analysisQueries[analysisType]
	if !ok {
		return "", nil, fmt.Errorf("unknown analysis type: %s", analysisType)
	}

	return s.Answer(ctx, fmt.Sprintf("%s %s", prefix, query))
}

// SuggestModification 生成简历修改建议
// 对比当前简历内容和目标职位，给出差距分析和改进建议
func (s *QAService) SuggestModification(ctx context.Context, currentRole string, targetPosition string) (string, []vectordb.Document, error) {
	if currentRole == "" || targetPosition == "" {
		return "", nil, fmt.Errorf("current role and target position cannot be empty")
	}

	question := fmt.Sprintf(
		"What skills does the %s have, and what skills would be needed for %s that might be missing from the current %s resume? "+
			"Suggest specific improvements focusing on quantifying achievements, using stronger action verbs and highlighting relevant accomplishments.",
		currentRole, targetPosition, currentRole)

	return s.Answer(ctx, question)
}

// getCached 读取缓存的回答和来源
func (s *QAService) getCached(cacheKey string) (string, []vectordb.Document, bool) {
	answer, found, err := s.cache.Get(cacheKey)
	if err != nil || !found {
		return "", nil, false
	}

	var sources []vectordb.Document
	docsJSON, docsFound, docsErr := s.cache.Get(cache.GenerateCacheKey(cacheKey, "docs"))
	if docsErr == nil && docsFound {
		if err := json.Unmarshal([]byte(docsJSON), &sources); err != nil {
			// 解析失败就使用空列表，不影响主流程
			s.logger.WithError(err).Warn("Failed to unmarshal cached sources")
			sources = nil
		}
	}

	return answer, sources, true
}

// setCached 缓存回答和来源
func (s *QAService) setCached(cacheKey string, answer string, sources []vectordb.Document) {
	if err := s.cache.Set(cacheKey, answer, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache answer")
		return
	}

	if docsJSON, err := json.Marshal(sources); err == nil {
		s.cache.Set(cache.GenerateCacheKey(cacheKey, "docs"), string(docsJSON), s.cacheTTL)
	}
}
