package handler

import (
	"net/http"
	"path/filepath"

	"github.com/fyerfyer/resume-assistant/api/middleware"
	"github.com/fyerfyer/resume-assistant/api/model"
	"github.com/fyerfyer/resume-assistant/internal/resume"
	"github.com/fyerfyer/resume-assistant/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ResumeHandler 处理简历相关的API请求
type ResumeHandler struct {
	resumeService *services.ResumeService    // 简历处理服务
	retriever     *services.RetrieverService // 职位过滤检索服务
	logger        *logrus.Logger             // 日志记录器
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(resumeService *services.ResumeService, retriever *services.RetrieverService) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
		retriever:     retriever,
		logger:        middleware.GetLogger(),
	}
}

// UploadResume 处理简历上传请求
// POST /api/resumes
func (h *ResumeHandler) UploadResume(c *gin.Context) {
	var req model.ResumeUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid resume upload request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	filename := req.File.Filename
	if !isValidResumeType(filepath.Ext(filename)) {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"不支持的文件类型，仅支持 .pdf, .md, .markdown, .txt",
		))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to open uploaded file")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法打开上传的文件",
		))
		return
	}
	defer file.Close()

	info, err := h.resumeService.Upload(c.Request.Context(), file, filename)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to save resume file")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"保存简历文件失败",
		))
		return
	}

	// 上传只负责落盘，索引在下一次处理运行时统一重建
	resp := model.ResumeUploadResponse{
		FileName: info.Name,
		Size:     info.Size,
		Status:   "uploaded",
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ProcessResumes 触发一次处理运行
// POST /api/resumes/process
func (h *ResumeHandler) ProcessResumes(c *gin.Context) {
	result, err := h.resumeService.ProcessAll(c.Request.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Resume processing run failed")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"处理简历失败: "+err.Error(),
		))
		return
	}

	resp := model.ProcessResponse{
		Processed:  result.Processed,
		Failed:     result.Failed,
		ChunkCount: result.ChunkCount,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ListResumes 获取简历列表
// GET /api/resumes
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	var req model.ResumeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的查询参数"))
		return
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.Role != "" {
		filters["role"] = req.Role
	}

	offset := (req.GetPage() - 1) * req.GetPageSize()
	resumes, total, err := h.resumeService.ListResumes(c.Request.Context(), offset, req.GetPageSize(), filters)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list resumes")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"获取简历列表失败",
		))
		return
	}

	infos := make([]model.ResumeInfo, len(resumes))
	for i, r := range resumes {
		infos[i] = model.ResumeInfo{
			FileName:    r.FileName,
			Role:        r.Role,
			Status:      string(r.Status),
			PageCount:   r.PageCount,
			ChunkCount:  r.ChunkCount,
			UploadedAt:  r.UploadedAt,
			ProcessedAt: r.ProcessedAt,
		}
	}

	resp := model.ResumeListResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Resumes:  infos,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// DeleteResume 删除简历
// DELETE /api/resumes/file/:filename
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	var req model.ResumeFileRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的文件名"))
		return
	}

	if err := h.resumeService.DeleteResume(c.Request.Context(), req.FileName); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": req.FileName,
		}).Error("Failed to delete resume")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"删除简历失败",
		))
		return
	}

	resp := model.ResumeDeleteResponse{
		Success:  true,
		FileName: req.FileName,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ListRoles 获取索引中出现过的职位标签
// GET /api/resumes/roles
func (h *ResumeHandler) ListRoles(c *gin.Context) {
	roles, err := h.retriever.AllRoles(c.Request.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to discover roles")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"获取职位列表失败: "+err.Error(),
		))
		return
	}

	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.RoleListResponse{Roles: names}))
}

// ResumesByRole 按职位查询简历
// GET /api/resumes/role/:role
func (h *ResumeHandler) ResumesByRole(c *gin.Context) {
	var req model.RoleRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的职位参数"))
		return
	}

	role, ok := resume.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"未知的职位标签: "+req.Role,
		))
		return
	}

	grouped, err := h.retriever.ResumesByRole(c.Request.Context(), role)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"role":  role,
		}).Error("Failed to retrieve resumes by role")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"按职位检索简历失败: "+err.Error(),
		))
		return
	}

	// 没有该职位的简历时返回空列表，不是错误
	resp := model.RoleResumesResponse{
		Role:    string(role),
		Resumes: make([]model.RoleResumeInfo, 0, len(grouped)),
	}
	for fileName, content := range grouped {
		resp.Resumes = append(resp.Resumes, model.RoleResumeInfo{
			FileName: fileName,
			Role:     content.Role,
			Chunks:   content.Chunks,
		})
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetResumeInfo 获取单份简历的详情
// GET /api/resumes/file/:filename
func (h *ResumeHandler) GetResumeInfo(c *gin.Context) {
	var req model.ResumeFileRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "无效的文件名"))
		return
	}

	detail, found, err := h.retriever.ResumeInfo(c.Request.Context(), req.FileName)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": req.FileName,
		}).Error("Failed to get resume info")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"获取简历详情失败: "+err.Error(),
		))
		return
	}

	if !found {
		// 走统一错误中间件，由它记录日志并构造响应
		middleware.HandleError(c, middleware.NewNotFoundError("未找到简历: "+req.FileName))
		return
	}

	resp := model.ResumeDetailResponse{
		FileName:   detail.FileName,
		Role:       detail.Role,
		Content:    detail.Content,
		ChunkCount: detail.ChunkCount,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// isValidResumeType 检查简历文件类型是否有效
func isValidResumeType(ext string) bool {
	validTypes := map[string]bool{
		".pdf":      true,
		".md":       true,
		".markdown": true,
		".txt":      true,
	}
	return validTypes[ext]
}
