package handlers

import (
	"net/http"

	"github.com/binay-das/cloudify/middleware"
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
)

// ListFiles serves GET /files?userId=&parentId=. userId must name the caller.
func ListFiles(c *gin.Context) {
	userID := middleware.UserID(c)
	if queryUserID := c.Query("userId"); queryUserID == "" || queryUserID != userID {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	parentID := optionalString(c.GetQuery("parentId"))
	files, err := getServices().File.ListFiles(c.Request.Context(), userID, parentID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, files)
}

func ListStarred(c *gin.Context) {
	files, err := getServices().File.ListStarred(c.Request.Context(), middleware.UserID(c))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, files)
}

func ListTrash(c *gin.Context) {
	files, err := getServices().File.ListTrashed(c.Request.Context(), middleware.UserID(c))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, files)
}

func ToggleTrash(c *gin.Context) {
	res, err := getServices().Lifecycle.ToggleTrash(c.Request.Context(), middleware.UserID(c), c.Param("fileId"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, utils.WithMessage(res.File, res.Message))
}

func ToggleStar(c *gin.Context) {
	res, err := getServices().Lifecycle.ToggleStar(c.Request.Context(), middleware.UserID(c), c.Param("fileId"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, utils.WithMessage(res.File, res.Message))
}

func DeleteFile(c *gin.Context) {
	file, err := getServices().Lifecycle.DeleteFile(c.Request.Context(), middleware.UserID(c), c.Param("fileId"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{
		"success":     true,
		"message":     "File deleted successfully",
		"deletedFile": file,
	})
}

func EmptyTrash(c *gin.Context) {
	res, err := getServices().Lifecycle.EmptyTrash(c.Request.Context(), middleware.UserID(c))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{
		"success": true,
		"message": res.Message,
		"count":   res.Count,
	})
}
