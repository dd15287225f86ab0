package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fyerfyer/resume-assistant/internal/database"
	"github.com/fyerfyer/resume-assistant/internal/document"
	"github.com/fyerfyer/resume-assistant/internal/models"
	"github.com/fyerfyer/resume-assistant/internal/repository"
	"github.com/fyerfyer/resume-assistant/internal/resume"
	"github.com/fyerfyer/resume-assistant/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupResumeTestDB(t *testing.T) func() {
	dbName := fmt.Sprintf("file:memdb_svc_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(&models.Resume{}, &models.ResumeChunk{})
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db
	return func() {
		database.DB = originalDB
	}
}

func newResumeTestService(t *testing.T) (*ResumeService, storage.Storage, *RetrieverService) {
	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err, "Should create local storage")

	repo := newMemoryRepo(t)
	t.Cleanup(func() { repo.Close() })

	embedder := &fakeEmbedder{}
	splitter := document.NewTextSplitter(document.DefaultSplitterConfig())
	guard := NewIndexGuard()

	svc := NewResumeService(store, splitter, embedder, repo,
		WithResumeRepository(repository.NewResumeRepository()),
		WithIndexGuard(guard),
	)
	retriever := NewRetrieverService(embedder, repo, WithRetrieverGuard(guard))

	return svc, store, retriever
}

func TestResumeService_Upload(t *testing.T) {
	cleanup := setupResumeTestDB(t)
	defer cleanup()

	svc, store, _ := newResumeTestService(t)
	ctx := context.Background()

	info, err := svc.Upload(ctx, strings.NewReader("Software engineer resume"), "alice.txt")
	require.NoError(t, err, "Should upload resume")
	assert.Equal(t, "alice.txt", info.Name)

	exists, err := store.Exists("alice.txt")
	require.NoError(t, err)
	assert.True(t, exists, "Uploaded file should be stored")

	// 不支持的格式被拒绝
	_, err = svc.Upload(ctx, strings.NewReader("x"), "photo.jpg")
	assert.Error(t, err, "Should reject unsupported formats")
}

func TestResumeService_ProcessAll(t *testing.T) {
	cleanup := setupResumeTestDB(t)
	defer cleanup()

	svc, _, retriever := newResumeTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader(
		"Alice Johnson. Senior software engineer with Go and Kubernetes experience."), "alice.txt")
	require.NoError(t, err)
	_, err = svc.Upload(ctx, strings.NewReader(
		"Bob Williams. Data scientist focused on statistical modeling."), "bob.txt")
	require.NoError(t, err)

	result, err := svc.ProcessAll(ctx)
	require.NoError(t, err, "Should process all resumes")
	assert.Len(t, result.Processed, 2, "Should process both files")
	assert.Empty(t, result.Failed, "Should have no failures")
	assert.GreaterOrEqual(t, result.ChunkCount, 2, "Should index at least one chunk per file")

	// 处理后可以按职位检索
	engineers, err := retriever.ResumesByRole(ctx, resume.RoleSoftwareEngineer)
	require.NoError(t, err, "Should search after processing")
	require.Contains(t, engineers, "alice.txt", "Should find alice by role")

	scientists, err := retriever.ResumesByRole(ctx, resume.RoleDataScientist)
	require.NoError(t, err)
	require.Contains(t, scientists, "bob.txt", "Should find bob by role")

	// 元数据已持久化
	resumes, total, err := svc.ListResumes(ctx, 0, 10, nil)
	require.NoError(t, err, "Should list resume metadata")
	assert.Equal(t, int64(2), total)
	for _, r := range resumes {
		assert.Equal(t, models.ResumeStatusCompleted, r.Status, "Processed resumes should be completed")
		assert.Greater(t, r.ChunkCount, 0, "Should record chunk count")
	}
}

func TestResumeService_ProcessAllSkipsBadFiles(t *testing.T) {
	cleanup := setupResumeTestDB(t)
	defer cleanup()

	svc, store, _ := newResumeTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader(
		"Alice Johnson. Senior software engineer."), "alice.txt")
	require.NoError(t, err)

	// 空文件解析失败，但不中止整个批次
	_, err = store.Save(strings.NewReader(""), "empty.txt")
	require.NoError(t, err)

	result, err := svc.ProcessAll(ctx)
	require.NoError(t, err, "Batch should survive individual failures")
	assert.Contains(t, result.Processed, "alice.txt", "Good file should be processed")
	assert.Contains(t, result.Failed, "empty.txt", "Bad file should be reported")
}

func TestResumeService_ProcessAllRebuildsIndex(t *testing.T) {
	cleanup := setupResumeTestDB(t)
	defer cleanup()

	svc, store, retriever := newResumeTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader(
		"Alice Johnson. Senior software engineer."), "alice.txt")
	require.NoError(t, err)

	_, err = svc.ProcessAll(ctx)
	require.NoError(t, err)

	// 删除文件后重新处理，索引重建，旧内容消失
	require.NoError(t, store.Delete("alice.txt"))
	_, err = svc.Upload(ctx, strings.NewReader(
		"Bob Williams. Data scientist and statistician."), "bob.txt")
	require.NoError(t, err)

	_, err = svc.ProcessAll(ctx)
	require.NoError(t, err)

	engineers, err := retriever.ResumesByRole(ctx, resume.RoleSoftwareEngineer)
	require.NoError(t, err)
	assert.Empty(t, engineers, "Old resume should be gone after rebuild")

	scientists, err := retriever.ResumesByRole(ctx, resume.RoleDataScientist)
	require.NoError(t, err)
	assert.Contains(t, scientists, "bob.txt", "New resume should be indexed")
}

func TestResumeService_ProcessAllEmptyStorage(t *testing.T) {
	cleanup := setupResumeTestDB(t)
	defer cleanup()

	svc, _, _ := newResumeTestService(t)

	_, err := svc.ProcessAll(context.Background())
	assert.Error(t, err, "Processing with no files should error")
}

func TestResumeService_DeleteResume(t *testing.T) {
	cleanup := setupResumeTestDB(t)
	defer cleanup()

	svc, store, _ := newResumeTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, strings.NewReader(
		"Alice Johnson. Senior software engineer."), "alice.txt")
	require.NoError(t, err)

	_, err = svc.ProcessAll(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteResume(ctx, "alice.txt"), "Should delete resume")

	exists, err := store.Exists("alice.txt")
	require.NoError(t, err)
	assert.False(t, exists, "File should be removed from storage")

	_, total, err := svc.ListResumes(ctx, 0, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "Metadata should be removed")
}
