package http

import (
	"github.com/gin-gonic/gin"

	"studyplanner/internal/bootstrap"
	"studyplanner/internal/transport/http/handler"
	"studyplanner/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(app.Log),
		gin.Recovery(),
		middleware.CORS(app.Config.App.AllowedOrigins),
	)
	router.MaxMultipartMemory = int64(app.Config.App.MaxUploadMB) << 20

	healthHandler := handler.NewHealthHandler(app)
	syllabusHandler := handler.NewSyllabusHandler(app.Syllabus, app.Config.App.MaxUploadMB)
	planHandler := handler.NewPlanHandler(app.Plans)
	chatHandler := handler.NewChatHandler(app.Chat)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")

	syllabusGroup := v1.Group("/syllabus")
	syllabusGroup.POST("", syllabusHandler.Upload)
	syllabusGroup.GET("", syllabusHandler.Current)
	syllabusGroup.GET("/search", syllabusHandler.Search)

	planGroup := v1.Group("/plans")
	planGroup.POST("/generate", planHandler.Generate)
	planGroup.GET("", planHandler.List)
	planGroup.DELETE("", planHandler.DeleteAll)
	planGroup.GET("/next", planHandler.Next)
	planGroup.GET("/daily-goals", planHandler.DailyGoals)
	planGroup.POST("/:id/done", planHandler.MarkDone)
	planGroup.DELETE("/:id", planHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("", chatHandler.Ask)
	chatGroup.GET("/history", chatHandler.History)

	return router
}
