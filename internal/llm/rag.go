package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultRAGTemplate 简历问答的默认提示词模板
// 包含变量：
// {{.Question}} - 用户问题
// {{.Context}} - 检索到的简历片段
const DefaultRAGTemplate = `You are a Resume Analysis Expert assistant.

You need to answer questions about multiple resumes. Use ONLY the context provided below to answer. If you don't know the answer based on the context, say "I don't have that information in the provided resumes."

When answering, always:
1. Specify which resume (by role and filename) you're referring to
2. Use direct quotes from the resumes when appropriate
3. Organize information clearly

Context about the resumes:
{{.Context}}

Question: {{.Question}}

Answer:`

// formatContext 格式化上下文内容
// 每个片段带上来源标注，模型回答时能引用具体简历
func formatContext(contexts []SourceReference) string {
	var formattedContext strings.Builder
	for i, src := range contexts {
		label := src.FileName
		if src.Role != "" {
			label = fmt.Sprintf("%s (%s)", src.FileName, src.Role)
		}
		if label == "" {
			label = fmt.Sprintf("source %d", i+1)
		}
		formattedContext.WriteString(fmt.Sprintf("[%d] From %s:\n%s\n\n", i+1, label, src.Content))
	}
	return formattedContext.String()
}

// RAGConfig 检索增强生成配置
type RAGConfig struct {
	// 提示词模板
	Template string
	// 最大Token数
	MaxTokens int
	// 温度参数
	Temperature float32
	// 超时时间
	Timeout time.Duration
	// 是否带上引用来源
	IncludeSources bool
}

// DefaultRAGConfig 默认RAG配置
func DefaultRAGConfig() *RAGConfig {
	return &RAGConfig{
		Template:       DefaultRAGTemplate,
		MaxTokens:      1000,
		Temperature:    0.2,
		Timeout:        30 * time.Second,
		IncludeSources: true,
	}
}

// RAGService 实现检索增强生成服务
type RAGService struct {
	Client Client       // 大模型客户端
	config *RAGConfig   // 配置
	mu     sync.RWMutex // 配置互斥锁
}

// NewRAG 创建新的检索增强生成服务
func NewRAG(client Client, opts ...RAGOption) *RAGService {
	cfg := DefaultRAGConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &RAGService{
		Client: client,
		config: cfg,
	}
}

// RAGOption RAG配置选项函数类型
type RAGOption func(*RAGConfig)

// WithTemplate 设置提示词模板
func WithTemplate(template string) RAGOption {
	return func(c *RAGConfig) {
		c.Template = template
	}
}

// WithRAGMaxTokens 设置最大Token数
func WithRAGMaxTokens(tokens int) RAGOption {
	return func(c *RAGConfig) {
		c.MaxTokens = tokens
	}
}

// WithRAGTemperature 设置温度参数
func WithRAGTemperature(temp float32) RAGOption {
	return func(c *RAGConfig) {
		c.Temperature = temp
	}
}

// WithRAGTimeout 设置请求超时时间
func WithRAGTimeout(timeout time.Duration) RAGOption {
	return func(c *RAGConfig) {
		c.Timeout = timeout
	}
}

// WithSources 设置是否包含引用来源
func WithSources(include bool) RAGOption {
	return func(c *RAGConfig) {
		c.IncludeSources = include
	}
}

// Answer 根据检索到的简历片段和问题生成回答
func (r *RAGService) Answer(ctx context.Context, question string, contexts []SourceReference) (*RAGResponse, error) {
	if question == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, "question cannot be empty")
	}

	r.mu.RLock()
	cfg := r.config
	r.mu.RUnlock()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	prompt := r.buildPrompt(question, contexts)

	response, err := r.Client.Generate(
		ctxWithTimeout,
		prompt,
		WithGenerateMaxTokens(cfg.MaxTokens),
		WithGenerateTemperature(cfg.Temperature),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %v", err)
	}

	ragResponse := &RAGResponse{
		Answer: response.Text,
	}

	if cfg.IncludeSources && len(contexts) > 0 {
		sources := make([]SourceReference, len(contexts))
		copy(sources, contexts)
		for i := range sources {
			if sources[i].ID == "" {
				sources[i].ID = fmt.Sprintf("src-%d", i+1)
			}
		}
		ragResponse.Sources = sources
	}

	return ragResponse, nil
}

// buildPrompt 构建增强提示词
func (r *RAGService) buildPrompt(question string, contexts []SourceReference) string {
	r.mu.RLock()
	template := r.config.Template
	r.mu.RUnlock()

	formattedContext := formatContext(contexts)

	// 简单的模板替换
	prompt := template
	prompt = strings.ReplaceAll(prompt, "{{.Question}}", question)
	prompt = strings.ReplaceAll(prompt, "{{.Context}}", formattedContext)

	return prompt
}

// SetTemplate 设置自定义提示词模板
func (r *RAGService) SetTemplate(template string) *RAGService {
	r.mu.Lock()
	r.config.Template = template
	r.mu.Unlock()
	return r
}
