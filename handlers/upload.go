package handlers

import (
	"errors"
	"net/http"

	"github.com/binay-das/cloudify/middleware"
	"github.com/binay-das/cloudify/services"
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers boundaries, part headers and the parentId field.
const multipartOverhead = 64 << 10

func UploadFile(c *gin.Context) {
	fileService := getServices().File
	limit := fileService.MaxUploadSize()
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorWithData(c, http.StatusBadRequest, "File too large", gin.H{"maxSize": limit})
			return
		}
		utils.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	src, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer src.Close()

	file, err := fileService.Upload(c.Request.Context(), middleware.UserID(c), services.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        src,
		ParentID:    optionalString(c.GetPostForm("parentId")),
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}
