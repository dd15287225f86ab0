package api

import (
	"github.com/fyerfyer/resume-assistant/api/handler"
	"github.com/fyerfyer/resume-assistant/api/middleware"
	"github.com/fyerfyer/resume-assistant/internal/resume"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	resumeHandler *handler.ResumeHandler,
	qaHandler *handler.QAHandler,
) *gin.Engine {
	registerValidations()

	router := gin.New()

	// 应用全局中间件
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	api := router.Group("/api")
	{
		// 简历管理API
		resumeGroup := api.Group("/resumes")
		{
			// 上传简历 - POST /api/resumes
			resumeGroup.POST("", resumeHandler.UploadResume)

			// 触发处理运行 - POST /api/resumes/process
			resumeGroup.POST("/process", resumeHandler.ProcessResumes)

			// 获取简历列表 - GET /api/resumes
			resumeGroup.GET("", resumeHandler.ListResumes)

			// 获取职位列表 - GET /api/resumes/roles
			resumeGroup.GET("/roles", resumeHandler.ListRoles)

			// 按职位查询简历 - GET /api/resumes/role/:role
			resumeGroup.GET("/role/:role", resumeHandler.ResumesByRole)

			// 获取简历详情 - GET /api/resumes/file/:filename
			resumeGroup.GET("/file/:filename", resumeHandler.GetResumeInfo)

			// 删除简历 - DELETE /api/resumes/file/:filename
			resumeGroup.DELETE("/file/:filename", resumeHandler.DeleteResume)
		}

		// 问答API
		qaGroup := api.Group("/qa")
		{
			// 回答问题 - POST /api/qa
			qaGroup.POST("", qaHandler.AnswerQuestion)

			// 预设分析 - POST /api/qa/analyze
			qaGroup.POST("/analyze", qaHandler.AnalyzeResumes)

			// 修改建议 - POST /api/qa/suggest
			qaGroup.POST("/suggest", qaHandler.SuggestModification)
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// registerValidations 注册自定义的请求校验规则
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// jobrole 校验字段是否为可识别的职位标签
		_ = v.RegisterValidation("jobrole", func(fl validator.FieldLevel) bool {
			_, ok := resume.ParseRole(fl.Field().String())
			return ok
		})
	}
}

// Cors 跨域资源共享中间件
// 如果需要支持跨域请求，可以启用此中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
