package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser PDF简历解析器
// 基于pdfcpu的内容提取，每页对应一个输出文件
type PDFParser struct{}

// NewPDFParser 创建PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse 解析PDF文件并提取全部文本内容
func (p *PDFParser) Parse(filePath string) (string, error) {
	pages, err := p.ParsePages(filePath)
	if err != nil {
		return "", err
	}

	var allText strings.Builder
	for _, page := range pages {
		if allText.Len() > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(page.Text)
	}

	return allText.String(), nil
}

// ParsePages 按页提取PDF文本
// 损坏或无文本内容的PDF返回错误，由上层决定是否跳过该文件
func (p *PDFParser) ParsePages(filePath string) ([]Page, error) {
	tmpDir, err := os.MkdirTemp("", "resume_pdf_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	conf := model.NewDefaultConfiguration()

	// pdfcpu把每页内容提取为目录下的一个txt文件
	if err := api.ExtractContentFile(filePath, tmpDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted content dir: %v", err)
	}

	// 按文件名排序即页码顺序
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var pages []Page
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		pages = append(pages, Page{
			Number: len(pages) + 1,
			Text:   text,
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text content found in PDF: %s", filepath.Base(filePath))
	}

	return pages, nil
}
