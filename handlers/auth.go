package handlers

import (
	"github.com/binay-das/cloudify/middleware"
	"github.com/binay-das/cloudify/services"
	"github.com/binay-das/cloudify/utils"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register binds leniently so missing fields reach the service's own validation.
func Register(c *gin.Context) {
	var req RegisterRequest
	_ = c.ShouldBindJSON(&req)

	out, err := getServices().Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}

func Login(c *gin.Context) {
	var req LoginRequest
	_ = c.ShouldBindJSON(&req)

	out, err := getServices().Auth.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}

func Logout(c *gin.Context) {
	tokenID, expiresAt := middleware.TokenInfo(c)
	if respondServiceError(c, getServices().Auth.Logout(c.Request.Context(), tokenID, expiresAt)) {
		return
	}
	utils.Success(c, gin.H{"success": true})
}

func GetProfile(c *gin.Context) {
	profile, err := getServices().Auth.GetProfile(c.Request.Context(), middleware.UserID(c))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, profile)
}
