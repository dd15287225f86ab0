package handler

import (
	"net/http"

	"github.com/fyerfyer/resume-assistant/api/middleware"
	"github.com/fyerfyer/resume-assistant/api/model"
	"github.com/fyerfyer/resume-assistant/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// QAHandler 处理问答相关的API请求
type QAHandler struct {
	qaService *services.QAService // 问答服务
	logger    *logrus.Logger      // 日志记录器
}

// NewQAHandler 创建问答处理器
func NewQAHandler(qaService *services.QAService) *QAHandler {
	return &QAHandler{
		qaService: qaService,
		logger:    middleware.GetLogger(),
	}
}

// AnswerQuestion 处理问答请求
// POST /api/qa
func (h *QAHandler) AnswerQuestion(c *gin.Context) {
	var req model.QARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid question request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	h.logger.WithField("question", req.Question).Info("Resume question")

	answer, sources, err := h.qaService.Answer(c.Request.Context(), req.Question)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"question": req.Question,
		}).Error("Failed to answer question")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"处理问题时出错: "+err.Error(),
		))
		return
	}

	resp := model.QAResponse{
		Question: req.Question,
		Answer:   answer,
		Sources:  model.ConvertToSourceInfo(sources),
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// AnalyzeResumes 处理预设分析请求
// POST /api/qa/analyze
func (h *QAHandler) AnalyzeResumes(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid analyze request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"type":  req.Type,
		"query": req.Query,
	}).Info("Resume analysis")

	answer, sources, err := h.qaService.Analyze(c.Request.Context(), services.AnalysisType(req.Type), req.Query)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"type":  req.Type,
		}).Error("Failed to run analysis")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"分析简历时出错: "+err.Error(),
		))
		return
	}

	resp := model.QAResponse{
		Question: req.Query,
		Answer:   answer,
		Sources:  model.ConvertToSourceInfo(sources),
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// SuggestModification 处理简历修改建议请求
// POST /api/qa/suggest
func (h *QAHandler) SuggestModification(c *gin.Context) {
	var req model.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid suggest request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"current_role":    req.CurrentRole,
		"target_position": req.TargetPosition,
	}).Info("Resume modification suggestion")

	answer, sources, err := h.qaService.SuggestModification(c.Request.Context(), req.CurrentRole, req.TargetPosition)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to suggest modifications")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"生成修改建议时出错: "+err.Error(),
		))
		return
	}

	resp := model.QAResponse{
		Question: req.TargetPosition,
		Answer:   answer,
		Sources:  model.ConvertToSourceInfo(sources),
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}
