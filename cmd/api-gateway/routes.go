package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/handler"
	"github.com/noah-isme/ai-saathi-api/internal/middleware"
	"github.com/noah-isme/ai-saathi-api/internal/models"
)

type routeDeps struct {
	APIPrefix string
	Docs      bool
	Logger    *zap.Logger

	Tokens    middleware.TokenValidator
	Languages middleware.LanguageResolver
	Audit     middleware.AuditWriter

	Auth      *handler.AuthHandler
	Students  *handler.StudentHandler
	Dashboard *handler.DashboardHandler
	Workflows *handler.WorkflowHandler
	I18n      *handler.I18nHandler
	Exports   *handler.ExportHandler
	Metrics   *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, deps routeDeps) {
	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Ready)
	r.GET("/metrics", deps.Metrics.Prometheus)

	if deps.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/refresh", deps.Auth.Refresh)

	authed := auth.Group("")
	authed.Use(middleware.JWT(deps.Tokens))
	authed.POST("/logout", deps.Auth.Logout)
	authed.POST("/change-password", deps.Auth.ChangePassword)
	authed.GET("/me", deps.Auth.Me)
	authed.POST("/register", middleware.RequireRoles(models.RoleAdmin), deps.Auth.Register)

	// signed token carries the authorization
	api.GET("/exports/download", deps.Exports.Download)

	i18n := api.Group("/i18n")
	i18n.Use(middleware.OptionalJWT(deps.Tokens), middleware.Language(deps.Languages))
	i18n.GET("/languages", deps.I18n.Languages)
	i18n.GET("/:language", deps.I18n.Catalog)
	i18n.POST("/translate", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), deps.I18n.Translate)

	protected := api.Group("")
	protected.Use(
		middleware.JWT(deps.Tokens),
		middleware.Language(deps.Languages),
		middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher),
	)

	students := protected.Group("/students")
	students.GET("", deps.Students.List)
	students.POST("", deps.Students.Create)
	students.GET("/export", middleware.Audit(deps.Audit, deps.Logger, models.AuditActionStudentExport, "student_profiles"), deps.Students.Export)
	students.GET("/:id", deps.Students.Get)
	students.PATCH("/:id", deps.Students.Update)
	students.DELETE("/:id", deps.Students.Delete)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/stats", deps.Dashboard.Stats)
	dashboard.GET("/activities", deps.Dashboard.Activities)

	protected.GET("/agents", deps.Workflows.Agents)

	workflowAudit := middleware.Audit(deps.Audit, deps.Logger, models.AuditActionWorkflowRun, "agent_workflows")
	workflows := protected.Group("/workflows")
	workflows.GET("", deps.Workflows.List)
	workflows.POST("", workflowAudit, deps.Workflows.Execute)
	workflows.GET("/templates", deps.Workflows.Templates)
	workflows.POST("/templates/:name", workflowAudit, deps.Workflows.ExecuteTemplate)
	workflows.GET("/:id", deps.Workflows.Get)

	protected.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), deps.Metrics.Summary)
}
