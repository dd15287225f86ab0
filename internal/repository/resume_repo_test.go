package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fyerfyer/resume-assistant/internal/database"
	"github.com/fyerfyer/resume-assistant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	// 使用唯一的内存数据库标识符
	dbName := fmt.Sprintf("file:memdb_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(&models.Resume{}, &models.ResumeChunk{})
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = originalDB
	}

	return db, cleanup
}

func newTestResume(id, fileName, role string) *models.Resume {
	return &models.Resume{
		ID:       id,
		FileName: fileName,
		FileType: "pdf",
		FilePath: "/uploads/" + fileName,
		FileSize: 2048,
		Status:   models.ResumeStatusUploaded,
		Role:     role,
	}
}

func TestResumeRepository_CreateAndGet(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResumeRepository()

	resume := newTestResume("resume-1", "john_doe_resume.pdf", "Software Engineer")
	require.NoError(t, repo.Create(resume), "Should create resume")

	got, err := repo.GetByID("resume-1")
	require.NoError(t, err, "Should find resume by ID")
	assert.Equal(t, "john_doe_resume.pdf", got.FileName, "Should keep file name")
	assert.Equal(t, "Software Engineer", got.Role, "Should keep role tag")
	assert.False(t, got.UploadedAt.IsZero(), "Should set upload time on create")

	byName, err := repo.GetByFileName("john_doe_resume.pdf")
	require.NoError(t, err, "Should find resume by file name")
	assert.Equal(t, "resume-1", byName.ID, "Should match resume ID")

	// 空ID拒绝创建
	require.Error(t, repo.Create(&models.Resume{}), "Should reject empty ID")
}

func TestResumeRepository_GetNotFound(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResumeRepository()

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, models.ErrResumeNotFound, "Should return not found error")

	_, err = repo.GetByFileName("missing.pdf")
	assert.ErrorIs(t, err, models.ErrResumeNotFound, "Should return not found error")
}

func TestResumeRepository_ListWithFilters(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResumeRepository()

	require.NoError(t, repo.Create(newTestResume("r1", "alice.pdf", "Software Engineer")))
	require.NoError(t, repo.Create(newTestResume("r2", "bob.pdf", "Data Scientist")))
	require.NoError(t, repo.Create(newTestResume("r3", "carol.pdf", "Software Engineer")))

	all, total, err := repo.List(0, 10, nil)
	require.NoError(t, err, "Should list all resumes")
	assert.Equal(t, int64(3), total, "Should count all resumes")
	assert.Len(t, all, 3, "Should return all resumes")

	engineers, total, err := repo.List(0, 10, map[string]interface{}{"role": "Software Engineer"})
	require.NoError(t, err, "Should filter by role")
	assert.Equal(t, int64(2), total, "Should count filtered resumes")
	for _, r := range engineers {
		assert.Equal(t, "Software Engineer", r.Role, "Filtered resumes should match role")
	}

	paged, total, err := repo.List(0, 2, nil)
	require.NoError(t, err, "Should paginate")
	assert.Equal(t, int64(3), total, "Total should ignore pagination")
	assert.Len(t, paged, 2, "Should limit page size")
}

func TestResumeRepository_UpdateStatus(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResumeRepository()
	require.NoError(t, repo.Create(newTestResume("r1", "alice.pdf", "")))

	require.NoError(t, repo.UpdateStatus("r1", models.ResumeStatusFailed, "parse error"), "Should update status")

	got, err := repo.GetByID("r1")
	require.NoError(t, err)
	assert.Equal(t, models.ResumeStatusFailed, got.Status, "Should persist status")
	assert.Equal(t, "parse error", got.Error, "Should persist error message")

	err = repo.UpdateStatus("missing", models.ResumeStatusCompleted, "")
	assert.ErrorIs(t, err, models.ErrResumeNotFound, "Should report missing resume")
}

func TestResumeRepository_Chunks(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResumeRepository()
	require.NoError(t, repo.Create(newTestResume("r1", "alice.pdf", "Software Engineer")))

	chunks := []*models.ResumeChunk{
		{ResumeID: "r1", ChunkID: "c2", Role: "Software Engineer", Page: 1, Position: 1, Text: "second"},
		{ResumeID: "r1", ChunkID: "c1", Role: "Software Engineer", Page: 1, Position: 0, Text: "first"},
		{ResumeID: "r1", ChunkID: "c3", Role: "Software Engineer", Page: 2, Position: 0, Text: "third"},
	}
	require.NoError(t, repo.SaveChunks(chunks), "Should save chunks")

	got, err := repo.GetChunks("r1")
	require.NoError(t, err, "Should load chunks")
	require.Len(t, got, 3, "Should return all chunks")
	// 按页码和页内序号排序
	assert.Equal(t, "first", got[0].Text, "Should sort by page and position")
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "third", got[2].Text)

	count, err := repo.CountChunks("r1")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "Should count chunks")

	require.NoError(t, repo.DeleteChunks("r1"), "Should delete chunks")
	count, err = repo.CountChunks("r1")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Should have no chunks after delete")
}

func TestResumeRepository_DeleteAll(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewResumeRepository()
	require.NoError(t, repo.Create(newTestResume("r1", "alice.pdf", "")))
	require.NoError(t, repo.Create(newTestResume("r2", "bob.pdf", "")))
	require.NoError(t, repo.SaveChunks([]*models.ResumeChunk{
		{ResumeID: "r1", ChunkID: "c1", Page: 1, Position: 0, Text: "x"},
	}))

	require.NoError(t, repo.DeleteAll(), "Should delete everything")

	_, total, err := repo.List(0, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "Should have no resumes left")

	count, err := repo.CountChunks("r1")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Should have no chunks left")
}
