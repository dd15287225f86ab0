package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown简历解析器
type MarkdownParser struct{}

// NewMarkdownParser 创建Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse 解析Markdown文件并提取纯文本内容
func (p *MarkdownParser) Parse(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown file: %v", err)
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)
	doc := mdParser.Parse(content)

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	htmlContent := markdown.Render(doc, renderer)

	return stripHTML(string(htmlContent)), nil
}

// ParsePages Markdown没有分页概念，整个文件作为单页返回
func (p *MarkdownParser) ParsePages(filePath string) ([]Page, error) {
	content, err := p.Parse(filePath)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("markdown file is empty: %s", filePath)
	}
	return []Page{{Number: 1, Text: content}}, nil
}

// blockTags 需要转换为换行的块级标签
var blockTags = []string{
	"</p>", "</li>", "</ul>", "</ol>",
	"</h1>", "</h2>", "</h3>", "</h4>", "</h5>", "</h6>",
	"<br>", "<br/>", "<br />",
}

// stripHTML 从渲染后的HTML中提取纯文本
// 简化实现：块级标签转换行，其余标签直接移除
func stripHTML(htmlText string) string {
	result := htmlText
	for _, tag := range blockTags {
		result = strings.ReplaceAll(result, tag, "\n\n")
	}
	result = strings.ReplaceAll(result, "<li>", "- ")

	var b strings.Builder
	inTag := false
	for _, r := range result {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	// 压缩连续空行
	text := b.String()
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text)
}
