package router

import (
	"factreel/internal/handler"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/runs", hdl.SubmitRun)
		api.GET("/runs", hdl.ListRuns)
		api.GET("/runs/:id", hdl.GetRun)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}
}
