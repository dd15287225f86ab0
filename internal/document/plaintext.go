package document

import (
	"fmt"
	"os"
	"strings"
)

// PlainTextParser 纯文本解析器
type PlainTextParser struct{}

// NewPlainTextParser 创建纯文本解析器
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// Parse 解析纯文本文件
func (p *PlainTextParser) Parse(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %v", err)
	}
	return string(content), nil
}

// ParsePages 纯文本没有分页概念，整个文件作为单页返回
func (p *PlainTextParser) ParsePages(filePath string) ([]Page, error) {
	content, err := p.Parse(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("text file is empty: %s", filePath)
	}
	return []Page{{Number: 1, Text: content}}, nil
}
