package handlers

import (
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "cloudify",
	})
}
