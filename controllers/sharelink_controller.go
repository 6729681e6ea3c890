package controllers

import (
	"io"
	"net/http"

	"capidrive/models"
	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ShareLinkController struct {
	shareLinkService *services.ShareLinkService
}

func NewShareLinkController(shareLinkService *services.ShareLinkService) *ShareLinkController {
	return &ShareLinkController{shareLinkService: shareLinkService}
}

// Create mints a share link over a file or folder
func (sc *ShareLinkController) Create(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req models.ShareLinkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	link, err := sc.shareLinkService.Create(c.Request.Context(), user, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Share link created", link)
}

// List returns the user's share links
func (sc *ShareLinkController) List(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	links, err := sc.shareLinkService.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Share links retrieved", links)
}

// Revoke deactivates a share link
func (sc *ShareLinkController) Revoke(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	linkID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid share link ID")
		return
	}

	if err := sc.shareLinkService.Revoke(c.Request.Context(), user, linkID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Share link revoked", nil)
}

// Access resolves a token into its target. Authentication is optional; an
// authenticated visitor on an anyone link is granted durable access.
func (sc *ShareLinkController) Access(c *gin.Context) {
	user, _ := utils.GetUserFromContext(c)

	view, err := sc.shareLinkService.Access(c.Request.Context(), c.Param("token"), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Share link resolved", view)
}

// Browse lists a subfolder inside a folder link's subtree
func (sc *ShareLinkController) Browse(c *gin.Context) {
	user, _ := utils.GetUserFromContext(c)
	folderID, err := utils.StringToObjectID(c.Param("folderId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	contents, err := sc.shareLinkService.Browse(c.Request.Context(), c.Param("token"), user, folderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder contents retrieved", contents)
}

// Download streams a file through a share link
func (sc *ShareLinkController) Download(c *gin.Context) {
	user, _ := utils.GetUserFromContext(c)
	fileID, err := utils.StringToObjectID(c.Param("fileId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	file, blob, err := sc.shareLinkService.Download(c.Request.Context(), c.Param("token"), user, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer blob.Close()

	streamFile(c, file.Filename, file.Size, blob)
}

// Thumbnail streams a thumbnail through a share link
func (sc *ShareLinkController) Thumbnail(c *gin.Context) {
	user, _ := utils.GetUserFromContext(c)
	fileID, err := utils.StringToObjectID(c.Param("fileId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	_, blob, err := sc.shareLinkService.Thumbnail(c.Request.Context(), c.Param("token"), user, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer blob.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, blob); err != nil {
		logrus.WithError(err).Warn("shared thumbnail download interrupted")
	}
}
