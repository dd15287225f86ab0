package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SplitterConfig 分段器配置
type SplitterConfig struct {
	ChunkSize    int // 分块目标大小（字符数）
	ChunkOverlap int // 相邻分块的重叠大小（字符数）
}

// DefaultSplitterConfig 返回默认分段器配置
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// TextSplitter 滑动窗口文本分段器
// 每个分块是原文的精确子串：下一个分块固定从上一个分块结束位置
// 往前ChunkOverlap个字符处开始，因此去掉重叠后拼接能还原原文。
// 分块结束位置优先选在段落、句子、单词边界，找不到才硬切
type TextSplitter struct {
	config SplitterConfig
}

// NewTextSplitter 创建文本分段器
func NewTextSplitter(config SplitterConfig) *TextSplitter {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 2
	}
	return &TextSplitter{config: config}
}

// boundaryMarkers 分块边界标记，按优先级排列
// 找到标记后分块在标记之后结束，保证标记本身留在前一个分块里
var boundaryMarkers = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Split 将文本分割成带重叠的分块
// 非空文本至少产生一个分块，空文本产生零个分块
func (s *TextSplitter) Split(text string) ([]Content, error) {
	if s.config.ChunkOverlap >= s.config.ChunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			s.config.ChunkOverlap, s.config.ChunkSize)
	}

	if strings.TrimSpace(text) == "" {
		return []Content{}, nil
	}

	var chunks []Content
	start := 0

	for {
		end := start + s.config.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = s.findBoundary(text, start, end)
		}

		chunks = append(chunks, Content{
			Text:  text[start:end],
			Index: len(chunks),
		})

		if end == len(text) {
			break
		}
		start = end - s.config.ChunkOverlap
		// 重叠起点落在多字节字符中间时前移到下一个rune起始位置
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
	}

	return chunks, nil
}

// findBoundary 在[floor, limit]区间内从后往前找最合适的分块结束位置
// floor保证下一个分块的起点严格前进，避免死循环
func (s *TextSplitter) findBoundary(text string, start, limit int) int {
	// 边界至少要越过重叠区，并且不短于半个分块，避免产生碎块
	floor := start + s.config.ChunkOverlap + 1
	if half := start + s.config.ChunkSize/2; half > floor {
		floor = half
	}
	if floor >= limit {
		return limit
	}

	window := text[floor:limit]
	for _, marker := range boundaryMarkers {
		if idx := strings.LastIndex(window, marker); idx >= 0 {
			return floor + idx + len(marker)
		}
	}

	// 找不到任何自然边界，硬切
	// 切点退到rune起始位置，避免把多字节字符切成两半；
	// 下界保证下一个分块的起点仍然严格前进
	cut := limit
	minCut := start + s.config.ChunkOverlap + 1
	for cut > minCut && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}
