package document

import (
	"os"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func createTempFile(t *testing.T, content, ext string) string {
	tmpFile, err := os.CreateTemp("", "resume-test-*"+ext)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func createTempPDF(t *testing.T, pages ...string) string {
	tmpFile, err := os.CreateTemp("", "resume-test-*.pdf")
	if err != nil {
		t.Fatalf("Failed to create temp PDF file: %v", err)
	}
	defer tmpFile.Close()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		pdf.MultiCell(0, 10, text, "", "", false)
	}
	if err := pdf.Output(tmpFile); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return tmpFile.Name()
}

func TestPlainTextParser(t *testing.T) {
	content := "Alice Johnson\nSenior software engineer with Go experience."
	file := createTempFile(t, content, ".txt")
	defer os.Remove(file)

	parser := NewPlainTextParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("PlainTextParser.Parse failed: %v", err)
	}
	if !strings.Contains(text, "software engineer") {
		t.Errorf("Expected content not found in parsed text: %s", text)
	}

	pages, err := parser.ParsePages(file)
	if err != nil {
		t.Fatalf("PlainTextParser.ParsePages failed: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("Plain text should parse as a single page, got %d", len(pages))
	}
	if pages[0].Number != 1 {
		t.Errorf("Page numbers should start at 1, got %d", pages[0].Number)
	}
}

func TestPlainTextParserEmptyFile(t *testing.T) {
	file := createTempFile(t, "   \n", ".txt")
	defer os.Remove(file)

	parser := NewPlainTextParser()
	if _, err := parser.ParsePages(file); err == nil {
		t.Error("Empty text file should fail page parsing")
	}
}

func TestMarkdownParser(t *testing.T) {
	content := "# Alice Johnson\n\nSenior **software engineer** resume.\n\n- Go\n- Kubernetes"
	file := createTempFile(t, content, ".md")
	defer os.Remove(file)

	parser := NewMarkdownParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("MarkdownParser.Parse failed: %v", err)
	}
	if !strings.Contains(text, "software engineer") {
		t.Errorf("Expected content not found in parsed text: %s", text)
	}
	if !strings.Contains(text, "Go") {
		t.Errorf("Expected list item not found in parsed text: %s", text)
	}
	if strings.Contains(text, "**") || strings.Contains(text, "<p>") {
		t.Errorf("Markup should be stripped from parsed text: %s", text)
	}
}

func TestPDFParser(t *testing.T) {
	file := createTempPDF(t, "Alice Johnson. Senior software engineer resume.")
	defer os.Remove(file)

	parser := NewPDFParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("PDFParser.Parse failed: %v", err)
	}
	if !strings.Contains(text, "software engineer") {
		t.Errorf("Expected content not found in parsed PDF text: %s", text)
	}
}

func TestPDFParserPages(t *testing.T) {
	file := createTempPDF(t,
		"Alice Johnson. Senior software engineer.",
		"Work history: backend services in Go.")
	defer os.Remove(file)

	parser := NewPDFParser()
	pages, err := parser.ParsePages(file)
	if err != nil {
		t.Fatalf("PDFParser.ParsePages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Number != i+1 {
			t.Errorf("Page %d has wrong number %d", i, page.Number)
		}
		if page.Text == "" {
			t.Errorf("Page %d has empty text", i)
		}
	}
	if !strings.Contains(pages[0].Text, "software engineer") {
		t.Errorf("First page content missing: %s", pages[0].Text)
	}
	if !strings.Contains(pages[1].Text, "Work history") {
		t.Errorf("Second page content missing: %s", pages[1].Text)
	}
}

func TestPDFParserCorruptFile(t *testing.T) {
	file := createTempFile(t, "this is not a pdf", ".pdf")
	defer os.Remove(file)

	parser := NewPDFParser()
	if _, err := parser.Parse(file); err == nil {
		t.Error("Corrupt PDF should fail parsing")
	}
}

func TestParserFactory(t *testing.T) {
	txtFile := createTempFile(t, "plain text resume", ".txt")
	defer os.Remove(txtFile)
	mdFile := createTempFile(t, "# Markdown resume", ".md")
	defer os.Remove(mdFile)
	pdfFile := createTempPDF(t, "PDF resume content")
	defer os.Remove(pdfFile)

	tests := []struct {
		file     string
		expected string
	}{
		{txtFile, "plain text"},
		{mdFile, "Markdown"},
		{pdfFile, "PDF resume"},
	}

	for _, tt := range tests {
		parser, err := ParserFactory(tt.file)
		if err != nil {
			t.Fatalf("ParserFactory failed for %s: %v", tt.file, err)
		}
		text, err := parser.Parse(tt.file)
		if err != nil {
			t.Fatalf("Parser.Parse failed for %s: %v", tt.file, err)
		}
		if !strings.Contains(text, tt.expected) {
			t.Errorf("Expected '%s' in parsed text, got: %s", tt.expected, text)
		}
	}
}

func TestParserFactoryUnsupported(t *testing.T) {
	if _, err := ParserFactory("photo.jpg"); err == nil {
		t.Error("Unsupported extension should be rejected")
	}
}
