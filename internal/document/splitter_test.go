package document

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildResumeText 生成带句子边界的长文本
func buildResumeText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("Led the development of a distributed service handling production traffic. ")
	}
	return b.String()
}

func TestSplitter_EmptyText(t *testing.T) {
	splitter := NewTextSplitter(DefaultSplitterConfig())

	chunks, err := splitter.Split("")
	require.NoError(t, err, "Empty text should not error")
	assert.Empty(t, chunks, "Empty text should produce zero chunks")

	chunks, err = splitter.Split("   \n\t  ")
	require.NoError(t, err)
	assert.Empty(t, chunks, "Whitespace-only text should produce zero chunks")
}

func TestSplitter_ShortText(t *testing.T) {
	splitter := NewTextSplitter(DefaultSplitterConfig())

	text := "Senior software engineer with Go experience."
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "Text shorter than chunk size should produce one chunk")
	assert.Equal(t, text, chunks[0].Text, "Single chunk should be the whole text")
	assert.Equal(t, 0, chunks[0].Index)
}

func TestSplitter_ChunksAreExactSubstrings(t *testing.T) {
	splitter := NewTextSplitter(DefaultSplitterConfig())

	text := buildResumeText(60)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "Long text should produce multiple chunks")

	for i, chunk := range chunks {
		assert.Contains(t, text, chunk.Text, "Chunk %d should be a substring of the original", i)
		assert.Equal(t, i, chunk.Index, "Chunk indexes should be sequential")
	}
}

func TestSplitter_OverlapReconstructsOriginal(t *testing.T) {
	config := DefaultSplitterConfig()
	splitter := NewTextSplitter(config)

	text := buildResumeText(60)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// 去掉每个后续分块开头的重叠部分后拼接应还原原文
	var b strings.Builder
	b.WriteString(chunks[0].Text)
	for _, chunk := range chunks[1:] {
		require.Greater(t, len(chunk.Text), config.ChunkOverlap,
			"Every chunk must be longer than the overlap")
		b.WriteString(chunk.Text[config.ChunkOverlap:])
	}
	assert.Equal(t, text, b.String(), "Removing overlap should reconstruct the original text")
}

func TestSplitter_OverlapMatchesPreviousTail(t *testing.T) {
	config := DefaultSplitterConfig()
	splitter := NewTextSplitter(config)

	text := buildResumeText(60)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		tail := prev[len(prev)-config.ChunkOverlap:]
		assert.Equal(t, tail, chunks[i].Text[:config.ChunkOverlap],
			"Chunk %d should start with the previous chunk's tail", i)
	}
}

func TestSplitter_PrefersSentenceBoundaries(t *testing.T) {
	splitter := NewTextSplitter(DefaultSplitterConfig())

	text := buildResumeText(60)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// 文本里到处是句子边界，非末尾分块应该都结束在边界上
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk.Text, ". ") || strings.HasSuffix(chunk.Text, " "),
			"Chunk should end at a natural boundary, got %q", chunk.Text[len(chunk.Text)-10:])
	}
}

func TestSplitter_Deterministic(t *testing.T) {
	splitter := NewTextSplitter(DefaultSplitterConfig())

	text := buildResumeText(40)
	first, err := splitter.Split(text)
	require.NoError(t, err)
	second, err := splitter.Split(text)
	require.NoError(t, err)

	assert.Equal(t, first, second, "Same input should always produce the same chunks")
}

func TestSplitter_NoBoundaryHardCut(t *testing.T) {
	config := SplitterConfig{ChunkSize: 100, ChunkOverlap: 20}
	splitter := NewTextSplitter(config)

	// 没有任何空白或标点的长字符串只能硬切
	text := strings.Repeat("a", 350)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "Long unbreakable text should still split")

	var b strings.Builder
	b.WriteString(chunks[0].Text)
	for _, chunk := range chunks[1:] {
		b.WriteString(chunk.Text[config.ChunkOverlap:])
	}
	assert.Equal(t, text, b.String(), "Hard cuts should still reconstruct the original")
}

func TestSplitter_MultibyteTextStaysValid(t *testing.T) {
	splitter := NewTextSplitter(DefaultSplitterConfig())

	// 没有空白和西文标点的中文简历只能硬切，
	// 切点和重叠起点都不能落在多字节字符中间
	text := strings.Repeat("软件工程师负责后端开发", 200)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "Long CJK text should produce multiple chunks")

	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Text), "Chunk %d should be valid UTF-8", i)
		assert.Contains(t, text, chunk.Text, "Chunk %d should be a substring of the original", i)
	}

	// 首尾分块覆盖原文的开头和结尾
	assert.True(t, strings.HasPrefix(text, chunks[0].Text), "First chunk should start the original text")
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1].Text), "Last chunk should end the original text")
}

func TestSplitter_ConfigSanitized(t *testing.T) {
	// 重叠不小于分块大小时自动收缩
	splitter := NewTextSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: 100})

	chunks, err := splitter.Split(strings.Repeat("word ", 100))
	require.NoError(t, err, "Sanitized config should still work")
	assert.NotEmpty(t, chunks)
}
