package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyerfyer/resume-assistant/internal/embedding"
	"github.com/fyerfyer/resume-assistant/internal/resume"
	"github.com/fyerfyer/resume-assistant/internal/vectordb"
	"github.com/sirupsen/logrus"
)

// ResumeContent 某个职位下单份简历的内容视图
type ResumeContent struct {
	Role   string   // 职位标签
	Chunks []string // 分块文本，保持检索顺序
}

// ResumeDetail 单份简历的聚合视图
type ResumeDetail struct {
	FileName   string // 文件名
	Role       string // 职位标签（取首个分块的标签）
	Content    string // 拼接后的全部分块内容
	ChunkCount int    // 分块数量
}

// RetrieverService 职位过滤检索服务
// 向量索引的原生元数据过滤不可靠，可能被后端忽略，
// 因此所有查询都采用超额检索加进程内精确过滤的两级策略
type RetrieverService struct {
	embedder   embedding.Client    // 嵌入模型客户端
	vectorDB   vectordb.Repository // 向量数据库
	guard      *IndexGuard         // 索引重建互斥
	overFetchK int                 // 第一级检索候选数量
	fallbackK  int                 // 回退检索候选数量
	sampleK    int                 // 职位发现的采样数量
	logger     *logrus.Logger      // 日志记录器
}

// RetrieverOption 检索服务配置选项
type RetrieverOption func(*RetrieverService)

// NewRetrieverService 创建职位过滤检索服务
func NewRetrieverService(
	embedder embedding.Client,
	vectorDB vectordb.Repository,
	opts ...RetrieverOption,
) *RetrieverService {
	srv := &RetrieverService{
		embedder:   embedder,
		vectorDB:   vectorDB,
		guard:      NewIndexGuard(),
		overFetchK: 20,  // 超额检索，补偿不可靠的元数据过滤
		fallbackK:  40,  // 回退时扩大候选范围
		sampleK:    100, // 职位发现的采样上限
		logger:     logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithRetrieverLogger 设置日志记录器
func WithRetrieverLogger(logger *logrus.Logger) RetrieverOption {
	return func(s *RetrieverService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetrieverGuard 设置索引互斥保护
func WithRetrieverGuard(guard *IndexGuard) RetrieverOption {
	return func(s *RetrieverService) {
		if guard != nil {
			s.guard = guard
		}
	}
}

// WithOverFetchK 设置第一级检索候选数量
func WithOverFetchK(k int) RetrieverOption {
	return func(s *RetrieverService) {
		if k > 0 {
			s.overFetchK = k
		}
	}
}

// WithFallbackK 设置回退检索候选数量
func WithFallbackK(k int) RetrieverOption {
	return func(s *RetrieverService) {
		if k > 0 {
			s.fallbackK = k
		}
	}
}

// ResumesByRole 返回指定职位下的全部简历
// 结果按文件名分组，每份简历的分块保持检索顺序；
// 没有该职位的简历时返回空映射，不是错误
func (s *RetrieverService) ResumesByRole(ctx context.Context, role resume.Role) (map[string]*ResumeContent, error) {
	s.guard.RLock()
	defer s.guard.RUnlock()

	// 用职位名构造查询文本做相似度检索
	query := fmt.Sprintf("resume for %s", role)
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed role query: %w", err)
	}

	// 第一级：带元数据过滤的超额检索
	// 过滤条件只是尽力而为，部分后端会忽略它
	results, err := s.vectorDB.Search(vector, vectordb.SearchFilter{
		Metadata:   map[string]interface{}{vectordb.MetaKeyRole: string(role)},
		MaxResults: s.overFetchK,
	})
	if err != nil {
		return nil, fmt.Errorf("role search failed: %w", err)
	}

	matched := filterByRole(results, role)

	// 第二级：过滤后为空时扩大范围做无过滤检索，再次精确过滤
	if len(matched) == 0 {
		s.logger.WithField("role", role).Debug("Filtered search empty, broadening search")

		results, err = s.vectorDB.Search(vector, vectordb.SearchFilter{
			MaxResults: s.fallbackK,
		})
		if err != nil {
			return nil, fmt.Errorf("fallback role search failed: %w", err)
		}
		matched = filterByRole(results, role)
	}

	// 按文件名分组，保持每个文件内分块的检索顺序
	grouped := make(map[string]*ResumeContent)
	for _, result := range matched {
		doc := result.Document
		content, ok := grouped[doc.FileName]
		if !ok {
			content = &ResumeContent{Role: doc.Role}
			grouped[doc.FileName] = content
		}
		content.Chunks = append(content.Chunks, doc.Text)
	}

	return grouped, nil
}

// ResumeInfo 返回指定文件名的简历详情
// 没有匹配的分块时返回found=false，不是错误
func (s *RetrieverService) ResumeInfo(ctx context.Context, fileName string) (*ResumeDetail, bool, error) {
	s.guard.RLock()
	defer s.guard.RUnlock()

	query := fmt.Sprintf("resume content of %s", fileName)
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("failed to embed filename query: %w", err)
	}

	results, err := s.vectorDB.Search(vector, vectordb.SearchFilter{
		Metadata:   map[string]interface{}{vectordb.MetaKeyFileName: fileName},
		MaxResults: s.overFetchK,
	})
	if err != nil {
		return nil, false, fmt.Errorf("filename search failed: %w", err)
	}

	matched := filterByFileName(results, fileName)

	if len(matched) == 0 {
		results, err = s.vectorDB.Search(vector, vectordb.SearchFilter{
			MaxResults: s.fallbackK,
		})
		if err != nil {
			return nil, false, fmt.Errorf("fallback filename search failed: %w", err)
		}
		matched = filterByFileName(results, fileName)
	}

	if len(matched) == 0 {
		return nil, false, nil
	}

	var texts []string
	for _, result := range matched {
		texts = append(texts, result.Document.Text)
	}

	return &ResumeDetail{
		FileName:   fileName,
		Role:       matched[0].Document.Role,
		Content:    strings.Join(texts, "\n\n"),
		ChunkCount: len(matched),
	}, true, nil
}

// AllRoles 返回索引中出现过的全部职位标签
// 通过大样本检索收集去重，顺序按职位枚举的声明顺序排列
func (s *RetrieverService) AllRoles(ctx context.Context) ([]resume.Role, error) {
	s.guard.RLock()
	defer s.guard.RUnlock()

	vector, err := s.embedder.Embed(ctx, "resume")
	if err != nil {
		return nil, fmt.Errorf("failed to embed sampling query: %w", err)
	}

	results, err := s.vectorDB.Search(vector, vectordb.SearchFilter{
		MaxResults: s.sampleK,
	})
	if err != nil {
		return nil, fmt.Errorf("role discovery search failed: %w", err)
	}

	seen := make(map[resume.Role]bool)
	for _, result := range results {
		if role, ok := resume.ParseRole(result.Document.Role); ok {
			seen[role] = true
		}
	}

	var roles []resume.Role
	for _, role := range resume.AllRoles() {
		if seen[role] {
			roles = append(roles, role)
		}
	}

	return roles, nil
}

// filterByRole 进程内精确职位过滤
// 这是正确性的唯一保证，索引自身的过滤结果不可信
func filterByRole(results []vectordb.SearchResult, role resume.Role) []vectordb.SearchResult {
	var matched []vectordb.SearchResult
	for _, result := range results {
		if result.Document.Role == string(role) {
			matched = append(matched, result)
		}
	}
	return matched
}

// filterByFileName 进程内精确文件名过滤
func filterByFileName(results []vectordb.SearchResult, fileName string) []vectordb.SearchResult {
	var matched []vectordb.SearchResult
	for _, result := range results {
		if result.Document.FileName == fileName {
			matched = append(matched, result)
		}
	}
	return matched
}
