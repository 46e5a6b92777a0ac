package router

import (
	"Go_Site/config"
	"Go_Site/internal/handler"
	"Go_Site/utils"

	"github.com/gin-gonic/gin"
)

// Handlers groups the route handlers.
type Handlers struct {
	Asset     *handler.AssetHandler
	Content   *handler.ContentHandler
	Reconcile *handler.ReconcileHandler
}

// InitRouter builds API routes. Every route requires an admin token.
func InitRouter(h Handlers) *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware(config.AppConfig.CORSAllowedOrigins))

	api := r.Group("/api")
	{
		admin := api.Group("")
		admin.Use(utils.AuthMiddleware(), utils.AdminMiddleware())

		assets := admin.Group("/assets")
		{
			assets.GET("", h.Asset.List)
			assets.GET("/quota", h.Asset.Quota)
			assets.GET("/:id", h.Asset.Get)
			assets.GET("/:id/usage", h.Asset.Usage)
			assets.POST("/upload", h.Asset.Upload)
			assets.POST("/rename", h.Asset.Rename)
			assets.POST("/delete", h.Asset.Delete)
		}

		content := admin.Group("/content")
		{
			content.POST("/reassign", h.Content.Reassign)
			content.POST("/detach", h.Content.Detach)
			content.POST("/gallery", h.Content.AddGalleryImage)
			content.GET("/gallery/:position", h.Content.ListGallery)
			content.POST("/about/in-use", h.Content.SetAboutUsInUse)
		}

		reconcile := admin.Group("/reconcile")
		{
			reconcile.GET("/tasks", h.Reconcile.List)
		}
	}
	return r
}
