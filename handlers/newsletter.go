package handlers

import (
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
)

type NewsletterRequest struct {
	Email string `json:"email"`
}

func Subscribe(c *gin.Context) {
	var req NewsletterRequest
	_ = c.ShouldBindJSON(&req)

	out, err := getServices().Newsletter.Subscribe(c.Request.Context(), req.Email)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}
