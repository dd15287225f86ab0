package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// Groq OpenAI兼容API端点
	defaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"
)

// GroqClient Groq大模型客户端实现
// 使用OpenAI兼容的chat completions接口
type GroqClient struct {
	apiKey      string       // API密钥
	baseURL     string       // API端点
	model       string       // 模型名称
	httpClient  *http.Client // HTTP客户端
	maxRetries  int          // 最大重试次数
	maxTokens   int          // 最大生成Token数
	temperature float32      // 温度参数
	topP        float32      // topP参数
}

// NewGroqClient 创建新的Groq大模型客户端
func NewGroqClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, NewLLMError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqEndpoint
	}

	model := cfg.Model
	if model == "" {
		model = ModelLlama33Versatile
	}

	client := &GroqClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}

	return client, nil
}

// Name 返回模型名称
func (c *GroqClient) Name() string {
	return c.model
}

// Generate 根据提示词生成回答
func (c *GroqClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	messages := []Message{
		{
			Role:    RoleUser,
			Content: prompt,
		},
	}

	// 转换GenerateOptions为ChatOptions后复用Chat
	var chatOpts []ChatOption
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.MaxTokens != nil {
		chatOpts = append(chatOpts, WithChatMaxTokens(*opts.MaxTokens))
	}
	if opts.Temperature != nil {
		chatOpts = append(chatOpts, WithChatTemperature(*opts.Temperature))
	}
	if opts.TopP != nil {
		chatOpts = append(chatOpts, WithChatTopP(*opts.TopP))
	}
	if opts.Stream {
		chatOpts = append(chatOpts, WithChatStream(opts.Stream))
	}

	return c.Chat(ctx, messages, chatOpts...)
}

// Chat 进行多轮对话
func (c *GroqClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewLLMError(ErrCodeInvalidRequest, "messages cannot be empty")
	}

	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	reqData := ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}

	// 请求级选项优先于客户端默认值
	maxTokens := c.maxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}
	if maxTokens > 0 {
		reqData.MaxTokens = &maxTokens
	}

	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	reqData.Temperature = &temperature

	topP := c.topP
	if opts.TopP != nil {
		topP = *opts.TopP
	}
	if topP > 0 {
		reqData.TopP = &topP
	}

	var resp ChatCompletionResponse
	if err := c.sendRequest(ctx, reqData, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, NewLLMError(ErrCodeServerError, "no completion choices returned")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, NewLLMError(ErrCodeContentFilter, ErrMsgContentFilter)
	}

	return &Response{
		Text:       choice.Message.Content,
		Messages:   append(messages, choice.Message),
		TokenCount: resp.Usage.TotalTokens,
		ModelName:  resp.Model,
		FinishTime: time.Now(),
	}, nil
}

// sendRequest 发送API请求并解析响应
func (c *GroqClient) sendRequest(ctx context.Context, reqData interface{}, respObj interface{}) error {
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避重试
			select {
			case <-ctx.Done():
				return NewLLMError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		req, reqErr := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			c.baseURL,
			bytes.NewReader(jsonData),
		)
		if reqErr != nil {
			return NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", reqErr))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		req.Header.Set("Accept", "application/json")

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			break
		}

		// 只有还会重试时才关闭响应体，最后一次的留给下面的错误解析
		if lastErr == nil && attempt < c.maxRetries {
			resp.Body.Close()
		}
	}

	if lastErr != nil {
		return NewLLMError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", lastErr))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewLLMError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp APIErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return NewLLMError(ErrCodeInvalidAPIKey, errResp.Error.Message)
			case http.StatusTooManyRequests:
				return NewLLMError(ErrCodeRateLimited, errResp.Error.Message)
			case http.StatusRequestEntityTooLarge:
				return NewLLMError(ErrCodeContextTooLong, errResp.Error.Message)
			default:
				return NewLLMError(ErrCodeServerError, errResp.Error.Message)
			}
		}

		return NewLLMError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	if err := json.Unmarshal(body, respObj); err != nil {
		return NewLLMError(ErrCodeServerError,
			fmt.Sprintf("failed to parse response: %v", err))
	}

	return nil
}

// 注册Groq客户端
func init() {
	RegisterClient("groq", NewGroqClient)
}
