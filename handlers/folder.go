package handlers

import (
	"net/http"

	"github.com/binay-das/cloudify/middleware"
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

func CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid folder name")
		return
	}

	folder, err := getServices().Folder.CreateFolder(c.Request.Context(), middleware.UserID(c), req.Name, req.ParentID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}
