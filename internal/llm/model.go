package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`           // 角色
	Content string      `json:"content"`        // 内容
	Name    string      `json:"name,omitempty"` // 可选名称标识
}

// ChatCompletionRequest OpenAI兼容聊天补全请求结构
type ChatCompletionRequest struct {
	Model       string    `json:"model"`                 // 模型名称
	Messages    []Message `json:"messages"`              // 对话消息列表
	MaxTokens   *int      `json:"max_tokens,omitempty"`  // 最大生成Token数
	Temperature *float32  `json:"temperature,omitempty"` // 采样温度
	TopP        *float32  `json:"top_p,omitempty"`       // 核采样概率阈值
	Stream      bool      `json:"stream,omitempty"`      // 是否流式输出
}

// ChatCompletionResponse OpenAI兼容聊天补全响应结构
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`      // 请求ID
	Object  string                 `json:"object"`  // 对象类型
	Created int64                  `json:"created"` // 创建时间戳
	Model   string                 `json:"model"`   // 实际使用的模型
	Choices []ChatCompletionChoice `json:"choices"` // 生成结果列表
	Usage   ChatCompletionUsage    `json:"usage"`   // 资源使用情况
}

// ChatCompletionChoice 单条生成结果
type ChatCompletionChoice struct {
	Index        int     `json:"index"`         // 结果序号
	Message      Message `json:"message"`       // 生成的消息
	FinishReason string  `json:"finish_reason"` // 结束原因
}

// ChatCompletionUsage 资源使用情况
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`     // 输入token数
	CompletionTokens int `json:"completion_tokens"` // 输出token数
	TotalTokens      int `json:"total_tokens"`      // 总token数
}

// APIErrorResponse OpenAI兼容API的错误响应结构
type APIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
}

// RAGResponse RAG响应结构
type RAGResponse struct {
	Answer  string            // 回答内容
	Sources []SourceReference // 引用来源
}

// SourceReference 引用来源
type SourceReference struct {
	ID       string                 // 文档ID
	FileID   string                 // 文件ID
	FileName string                 // 文件名
	Role     string                 // 简历职位标签
	Content  string                 // 引用内容
	Metadata map[string]interface{} // 元数据
}

// Model 常用模型名称
const (
	ModelLlama33Versatile = "Llama-3.3-70b-Versatile" // Llama 3.3 70B（平衡速度和分析能力）
	ModelLlama31Instant   = "llama-3.1-8b-instant"    // Llama 3.1 8B（较快，基础能力）
	ModelMixtral8x7B      = "mixtral-8x7b-32768"      // Mixtral 8x7B（支持长上下文）
)
