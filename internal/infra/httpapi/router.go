package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *VideoHandler, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	video := r.Group("/video", JWTAuth(jwtSecret))
	{
		video.POST("/upload", handler.Upload)
		video.POST("/:id/process", handler.Process)
		video.GET("/:id/status", handler.Status)
		video.GET("/user/:userId", handler.UserVideos)
		video.GET("/:id/download", handler.Download)
		video.GET("/:id/download-redirect", handler.DownloadRedirect)
	}

	admin := r.Group("/admin", JWTAuth(jwtSecret))
	{
		admin.GET("/videos", handler.VideosByStatus)
	}

	return r
}
