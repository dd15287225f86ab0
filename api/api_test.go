package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fyerfyer/resume-assistant/api/handler"
	"github.com/fyerfyer/resume-assistant/api/model"
	"github.com/fyerfyer/resume-assistant/internal/cache"
	"github.com/fyerfyer/resume-assistant/internal/database"
	"github.com/fyerfyer/resume-assistant/internal/document"
	"github.com/fyerfyer/resume-assistant/internal/llm"
	"github.com/fyerfyer/resume-assistant/internal/models"
	"github.com/fyerfyer/resume-assistant/internal/repository"
	"github.com/fyerfyer/resume-assistant/internal/services"
	"github.com/fyerfyer/resume-assistant/internal/vectordb"
	"github.com/fyerfyer/resume-assistant/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeEmbedder 确定性嵌入客户端，相同文本得到相同向量
type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, 8)
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	for i := range vector {
		vector[i] = float32((seed>>uint(i*4))&0xF) + 1
	}
	return vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

// fakeLLM 固定回答的假大模型客户端
type fakeLLM struct {
	answer string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (*llm.Response, error) {
	return &llm.Response{Text: f.answer, FinishTime: time.Now()}, nil
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, options ...llm.ChatOption) (*llm.Response, error) {
	return &llm.Response{Text: f.answer, FinishTime: time.Now()}, nil
}

func (f *fakeLLM) Name() string { return "fake-llm" }

// setupTestRouter 构建端到端测试环境
func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	// 内存数据库
	dbName := fmt.Sprintf("file:memdb_api_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Resume{}, &models.ResumeChunk{}))

	originalDB := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = originalDB })

	fileStorage, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	vectorDB, err := vectordb.NewRepository(vectordb.Config{
		Type:         "memory",
		Dimension:    8,
		DistanceType: vectordb.Cosine,
	})
	require.NoError(t, err)
	t.Cleanup(func() { vectorDB.Close() })

	cacheService, err := cache.NewCache(cache.DefaultConfig())
	require.NoError(t, err)

	embedder := &fakeEmbedder{}
	splitter := document.NewTextSplitter(document.DefaultSplitterConfig())
	ragService := llm.NewRAG(&fakeLLM{answer: "Mock answer based on the resumes."})
	guard := services.NewIndexGuard()

	resumeService := services.NewResumeService(
		fileStorage, splitter, embedder, vectorDB,
		services.WithResumeRepository(repository.NewResumeRepository()),
		services.WithIndexGuard(guard),
	)
	retriever := services.NewRetrieverService(embedder, vectorDB,
		services.WithRetrieverGuard(guard))
	qaService := services.NewQAService(embedder, vectorDB, ragService, cacheService,
		services.WithQAGuard(guard))

	return SetupRouter(
		handler.NewResumeHandler(resumeService, retriever),
		handler.NewQAHandler(qaService),
	)
}

// uploadResume 构造multipart上传请求
func uploadResume(t *testing.T, router *gin.Engine, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// doJSON 发送JSON请求
func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseResponse 解析通用响应envelope
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) model.Response {
	t.Helper()
	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Response should be valid JSON")
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestUploadResume(t *testing.T) {
	router := setupTestRouter(t)

	w := uploadResume(t, router, "alice.txt", "Alice Johnson. Senior software engineer.")
	require.Equal(t, http.StatusOK, w.Code, "Upload should succeed: %s", w.Body.String())

	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)

	// 不支持的文件类型
	w = uploadResume(t, router, "photo.jpg", "binary")
	assert.Equal(t, http.StatusBadRequest, w.Code, "Unsupported type should be rejected")
}

func TestProcessAndRetrieveFlow(t *testing.T) {
	router := setupTestRouter(t)

	w := uploadResume(t, router, "alice.txt",
		"Alice Johnson. Senior software engineer with Go and Kubernetes experience.")
	require.Equal(t, http.StatusOK, w.Code)
	w = uploadResume(t, router, "bob.txt",
		"Bob Williams. Data scientist focused on statistical modeling.")
	require.Equal(t, http.StatusOK, w.Code)

	// 触发处理运行
	w = doJSON(router, http.MethodPost, "/api/resumes/process", nil)
	require.Equal(t, http.StatusOK, w.Code, "Process run should succeed: %s", w.Body.String())
	assert.Contains(t, w.Body.String(), "alice.txt")
	assert.Contains(t, w.Body.String(), "bob.txt")

	// 简历列表
	w = doJSON(router, http.MethodGet, "/api/resumes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data model.ResumeListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, int64(2), listResp.Data.Total)

	// 职位发现
	w = doJSON(router, http.MethodGet, "/api/resumes/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Software Engineer")
	assert.Contains(t, w.Body.String(), "Data Scientist")

	// 按职位查询
	rolePath := "/api/resumes/role/" + url.PathEscape("Software Engineer")
	w = doJSON(router, http.MethodGet, rolePath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice.txt")
	assert.NotContains(t, w.Body.String(), "bob.txt", "Other roles should not leak in")

	// 未知职位被拒绝
	w = doJSON(router, http.MethodGet, "/api/resumes/role/Astronaut", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 简历详情
	w = doJSON(router, http.MethodGet, "/api/resumes/file/alice.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "software engineer")

	// 不存在的简历走统一错误中间件返回404
	w = doJSON(router, http.MethodGet, "/api/resumes/file/missing.txt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "未找到简历", "Not-found error message should survive the error middleware")

	// 删除简历
	w = doJSON(router, http.MethodDelete, "/api/resumes/file/alice.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestQAEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	uploadResume(t, router, "jane_smith_resume.txt",
		"Jane Smith. Data scientist with Python and SQL experience.")
	w := doJSON(router, http.MethodPost, "/api/resumes/process", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 普通问答
	w = doJSON(router, http.MethodPost, "/api/qa", model.QARequest{
		Question: "Tell me about Jane Smith's skills",
	})
	require.Equal(t, http.StatusOK, w.Code, "QA should succeed: %s", w.Body.String())

	var qaResp struct {
		Data model.QAResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qaResp))
	assert.Equal(t, "Mock answer based on the resumes.", qaResp.Data.Answer)
	assert.NotEmpty(t, qaResp.Data.Sources, "Should return source attribution")
	for _, source := range qaResp.Data.Sources {
		assert.Equal(t, "jane_smith_resume.txt", source.FileName)
	}

	// 空问题被拒绝
	w = doJSON(router, http.MethodPost, "/api/qa", model.QARequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	uploadResume(t, router, "alice.txt", "Alice Johnson. Senior software engineer.")
	w := doJSON(router, http.MethodPost, "/api/resumes/process", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/qa/analyze", model.AnalyzeRequest{
		Type:  "skills",
		Query: "for the software engineer",
	})
	require.Equal(t, http.StatusOK, w.Code, "Analysis should succeed: %s", w.Body.String())

	// 未知分析类型被binding校验拒绝
	w = doJSON(router, http.MethodPost, "/api/qa/analyze", model.AnalyzeRequest{
		Type: "horoscope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	uploadResume(t, router, "alice.txt", "Alice Johnson. Senior software engineer.")
	w := doJSON(router, http.MethodPost, "/api/resumes/process", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/qa/suggest", model.SuggestRequest{
		CurrentRole:    "software engineer",
		TargetPosition: "engineering manager",
	})
	require.Equal(t, http.StatusOK, w.Code, "Suggestion should succeed: %s", w.Body.String())

	// 缺少必填字段
	w = doJSON(router, http.MethodPost, "/api/qa/suggest", model.SuggestRequest{
		CurrentRole: "software engineer",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessWithNoResumes(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/resumes/process", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "Empty storage should fail the run")
}
