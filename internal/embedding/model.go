package embedding

// EmbeddingRequest OpenAI兼容嵌入API请求结构
type EmbeddingRequest struct {
	Model          string   `json:"model"`                // 模型名称
	Input          []string `json:"input"`                // 需要嵌入的文本列表
	Dimensions     int      `json:"dimensions,omitempty"` // 可选的向量维度
	EncodingFormat string   `json:"encoding_format,omitempty"`
	User           string   `json:"user,omitempty"` // 可选的用户标识符
}

// EmbeddingResponse OpenAI兼容嵌入API响应结构
type EmbeddingResponse struct {
	Object string          `json:"object"`
	Data   []EmbeddingData `json:"data"`  // 嵌入结果列表
	Model  string          `json:"model"` // 实际使用的模型
	Usage  EmbeddingUsage  `json:"usage"` // 资源使用情况
}

// EmbeddingData 单条文本的嵌入结果
type EmbeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"` // 嵌入向量
	Index     int       `json:"index"`     // 对应输入文本的位置
}

// EmbeddingUsage 资源使用情况
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"` // 输入token数
	TotalTokens  int `json:"total_tokens"`  // 总token数
}

// APIErrorResponse OpenAI兼容API的错误响应结构
type APIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
