package controllers

import (
	"capidrive/models"
	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	auth, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	setAuthCookie(c, auth.Token)
	utils.CreatedResponse(c, "Registration successful", auth)
}

// Login handles user authentication
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	auth, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	setAuthCookie(c, auth.Token)
	utils.SuccessResponse(c, "Login successful", auth)
}

// Logout clears the auth cookie
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	utils.SuccessResponse(c, "Logout successful", nil)
}

// Me returns the authenticated user's profile
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	utils.SuccessResponse(c, "Profile retrieved", user)
}

func setAuthCookie(c *gin.Context, token string) {
	c.SetCookie("access_token", token, utils.AccessTokenMaxAge(), "/", "", false, true)
}
