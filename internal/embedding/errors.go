package embedding

import "fmt"

// 嵌入API调用的错误码
// 处理管线通过错误码区分配置错误和暂时性故障
const (
	ErrCodeInvalidAPIKey  = 1001 // API密钥缺失或未授权
	ErrCodeInvalidRequest = 1002 // 请求参数非法
	ErrCodeNetworkError   = 1003 // 网络层失败
	ErrCodeRateLimited    = 1004 // 触发API频率限制
	ErrCodeServerError    = 1005 // 嵌入服务端错误
	ErrCodeTimeout        = 1006 // 请求超时或上下文取消
	ErrCodeEmptyInput     = 1007 // 输入文本为空
)

// 固定的错误消息
// API返回的错误走原始消息，这里只覆盖本地校验
const (
	ErrMsgInvalidAPIKey = "embedding API key is missing or invalid"
	ErrMsgEmptyInput    = "embedding input text cannot be empty"
)

// EmbeddingError 嵌入客户端的类型化错误
// Code标识失败原因，Message尽量保留API返回的原始描述
type EmbeddingError struct {
	Code    int
	Message string
}

func (e EmbeddingError) Error() string {
	return fmt.Sprintf("embedding error (code=%d): %s", e.Code, e.Message)
}

// IsRetryable 判断该错误在下一次处理运行时是否可能自行恢复
func (e EmbeddingError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRateLimited, ErrCodeNetworkError, ErrCodeServerError, ErrCodeTimeout:
		return true
	}
	return false
}

// NewEmbeddingError 创建类型化嵌入错误
func NewEmbeddingError(code int, message string) EmbeddingError {
	return EmbeddingError{
		Code:    code,
		Message: message,
	}
}
