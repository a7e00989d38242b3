package handlers

import (
	"errors"
	"net/http"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/middleware"
	"github.com/binay-das/cloudify/services"
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var appServices *services.Container

func SetServices(container *services.Container) {
	appServices = container
}

func getServices() *services.Container {
	if appServices == nil {
		panic("services container is not initialized")
	}
	return appServices
}

func respondServiceError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error(appErr.Message,
				zap.String("path", c.FullPath()),
				zap.String("user_id", middleware.UserID(c)),
				zap.Error(appErr.Err))
		}
		if appErr.Data != nil {
			utils.ErrorWithData(c, appErr.HTTPCode, appErr.Message, appErr.Data)
		} else {
			utils.Error(c, appErr.HTTPCode, appErr.Message)
		}
		return true
	}
	logger.Error("unhandled service error", zap.String("path", c.FullPath()), zap.Error(err))
	utils.Error(c, http.StatusInternalServerError, "internal error")
	return true
}

// optionalString returns nil for a missing or blank value.
func optionalString(v string, present bool) *string {
	if !present || v == "" {
		return nil
	}
	return &v
}
