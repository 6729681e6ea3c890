package controllers

import (
	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	authService *services.AuthService
}

func NewUserController(authService *services.AuthService) *UserController {
	return &UserController{authService: authService}
}

// Lookup resolves a username to a public profile, for share target pickers
func (uc *UserController) Lookup(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		utils.BadRequestResponse(c, "username query parameter is required")
		return
	}

	user, err := uc.authService.LookupUsername(c.Request.Context(), username)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "User found", user.PublicProfile())
}
