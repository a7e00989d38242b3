package handlers

import "github.com/gin-gonic/gin"

// SetupRoutes mounts the API under /api. auth guards every file route.
func SetupRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	api := r.Group("/api")

	api.GET("/health", HealthCheck)
	api.POST("/register", Register)
	api.POST("/login", Login)
	api.POST("/newsletter", Subscribe)

	protected := api.Group("")
	protected.Use(auth)
	{
		protected.POST("/logout", Logout)
		protected.GET("/me", GetProfile)

		protected.POST("/folders", CreateFolder)
		protected.POST("/upload", UploadFile)

		protected.GET("/files", ListFiles)
		protected.GET("/files/starred", ListStarred)
		protected.GET("/files/trash", ListTrash)
		protected.DELETE("/files/empty-trash", EmptyTrash)
		protected.PUT("/files/:fileId/trash", ToggleTrash)
		protected.PUT("/files/:fileId/star", ToggleStar)
		protected.DELETE("/files/:fileId/delete", DeleteFile)
	}
}
