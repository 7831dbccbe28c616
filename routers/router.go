package routers

import (
	"storybook-server/routers/api"

	"github.com/gin-gonic/gin"
)

func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Static("/static", "./data")
	v1 := r.Group("/v1/api")
	{
		v1.POST("/books", api.CreateBook)
		v1.GET("/books/:session_id", api.GetBook)
		v1.POST("/books/:session_id/story", api.EditStory)
		v1.POST("/books/:session_id/scenes", api.PlanScenes)
		v1.POST("/books/:session_id/images", api.GenerateImages)
		v1.POST("/books/:session_id/narration", api.GenerateNarration)
		v1.POST("/books/:session_id/nav", api.Navigate)
		v1.POST("/books/:session_id/export", api.ExportScenePDF)
		v1.POST("/books/:session_id/save", api.SaveBook)

		v1.GET("/library", api.ListLibrary)
		v1.GET("/library/:entry_id", api.GetLibraryEntry)
		v1.POST("/library/:entry_id/load", api.LoadLibraryEntry)
		v1.POST("/library/:entry_id/publish", api.PublishLibraryEntry)

		v1.POST("/transcribe", api.Transcribe)
		v1.GET("/runs", api.ListRuns)
	}
	r.GET("/books/:session_id/progress/ws", api.BookProgressWebSocket)
	return r
}
