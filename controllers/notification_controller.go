package controllers

import (
	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List returns the user's notification feed, newest first
func (nc *NotificationController) List(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	notifications, err := nc.notificationService.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Notifications retrieved", notifications)
}

// MarkRead flags one notification as read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	id, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification ID")
		return
	}

	if err := nc.notificationService.MarkRead(c.Request.Context(), user, id); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Notification marked as read", nil)
}
