package document

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType 不支持的文档类型
var ErrUnsupportedType = errors.New("unsupported document type")

// Parser 文档解析器接口
// 负责将不同格式的简历文件解析为纯文本
type Parser interface {
	// Parse 解析整个文档，返回全部文本内容
	Parse(filePath string) (string, error)

	// ParsePages 按页解析文档
	// 职位打标以页为单位进行，没有分页概念的格式返回单页
	ParsePages(filePath string) ([]Page, error)
}

// Page 文档中的一页
type Page struct {
	Number int    // 页码，从1开始
	Text   string // 该页的文本内容
}

// Content 分段后的文本块
type Content struct {
	Text  string // 分块文本内容
	Index int    // 分块在原文本中的序号
}

// Splitter 文本分段器接口
type Splitter interface {
	// Split 将文本分割成带重叠的分块
	Split(text string) ([]Content, error)
}

// ContentType 文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ParserFactory 根据文件类型创建对应的解析器
func ParserFactory(filePath string) (Parser, error) {
	switch detectContentType(filePath) {
	case PDF:
		return NewPDFParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, ErrUnsupportedType
	}
}

// detectContentType 根据文件扩展名检测内容类型
func detectContentType(filePath string) ContentType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}
