package resume

import (
	"testing"

	"github.com/fyerfyer/resume-assistant/internal/vectordb"
	"github.com/stretchr/testify/assert"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		query    string
		expected string
	}{
		{"Tell me about Jane Smith's experience", "Jane Smith"},
		{"what skills does John Doe have", "John Doe"},
		{"what skills are listed in the resumes", ""},
		{"compare the candidates", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractName(tt.query), "query: %q", tt.query)
	}
}

func attributionDocs() []vectordb.Document {
	return []vectordb.Document{
		{ID: "1", FileName: "jane_smith_resume.pdf", Text: "Data scientist with Python skills."},
		{ID: "2", FileName: "john_doe_resume.pdf", Text: "Software engineer with Go skills."},
		{ID: "3", FileName: "carol_davis_resume.pdf", Text: "UX designer portfolio."},
	}
}

func TestFilterSources_NamedCandidate(t *testing.T) {
	docs := attributionDocs()

	filtered := FilterSources("Tell me about Jane Smith's experience", docs)
	assert.Len(t, filtered, 1, "Should narrow to the named candidate")
	assert.Equal(t, "jane_smith_resume.pdf", filtered[0].FileName)
}

func TestFilterSources_PartialNameComponent(t *testing.T) {
	docs := attributionDocs()

	// 姓名任一分量命中文件名即保留
	filtered := FilterSources("Does John Doe know Kubernetes", docs)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "john_doe_resume.pdf", filtered[0].FileName)
}

func TestFilterSources_NoNameReturnsAll(t *testing.T) {
	docs := attributionDocs()

	filtered := FilterSources("what skills are listed in the resumes", docs)
	assert.Equal(t, docs, filtered, "Queries without a name keep all sources")
}

func TestFilterSources_NoMatchNeverEmpty(t *testing.T) {
	docs := attributionDocs()

	// 提到的人名不属于任何文件时原样返回，绝不清空来源
	filtered := FilterSources("Tell me about Maria Garcia's experience", docs)
	assert.Equal(t, docs, filtered, "Filtering must never silently drop all sources")
}

func TestFilterSources_FalsePositiveName(t *testing.T) {
	docs := attributionDocs()

	// 大写短语会被误判成人名，但兜底规则保证来源不丢
	filtered := FilterSources("Explain the Machine Learning section", docs)
	assert.Equal(t, docs, filtered)
}

func TestFilterSources_EmptyInput(t *testing.T) {
	assert.Empty(t, FilterSources("Tell me about Jane Smith", nil))
}
