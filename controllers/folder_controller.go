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

type FolderController struct {
	folderService *services.FolderService
	accessService *services.AccessService
}

func NewFolderController(folderService *services.FolderService, accessService *services.AccessService) *FolderController {
	return &FolderController{
		folderService: folderService,
		accessService: accessService,
	}
}

// Create handles folder creation
func (fc *FolderController) Create(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req models.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	folder, err := fc.folderService.Create(c.Request.Context(), user, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Folder created", folder)
}

// Root lists the top level of the user's drive
func (fc *FolderController) Root(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	contents, err := fc.folderService.RootContents(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Root contents retrieved", contents)
}

// Contents lists one level of a folder
func (fc *FolderController) Contents(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	contents, err := fc.folderService.Contents(c.Request.Context(), user, folderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder contents retrieved", contents)
}

// Delete removes a folder and its whole subtree
func (fc *FolderController) Delete(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	if err := fc.folderService.Delete(c.Request.Context(), user, folderID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder deleted", nil)
}

// MarkViewed flags every accessible unseen file in the subtree
func (fc *FolderController) MarkViewed(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	count, err := fc.folderService.MarkViewed(c.Request.Context(), user, folderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Files marked as viewed", gin.H{"marked": count})
}

// Download streams the folder subtree as a zip archive
func (fc *FolderController) Download(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	archive, name, err := fc.folderService.DownloadZip(c.Request.Context(), user, folderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer archive.Close()

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, archive); err != nil {
		logrus.WithError(err).Warn("folder download interrupted")
	}
}

// GrantAccess shares a folder with another user
func (fc *FolderController) GrantAccess(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	var req models.GrantAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	grant, err := fc.accessService.GrantFolderAccess(c.Request.Context(), user, folderID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Folder access granted", grant)
}

// ListAccess lists a folder's grants
func (fc *FolderController) ListAccess(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	grants, err := fc.accessService.ListFolderAccess(c.Request.Context(), user, folderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder access list retrieved", grants)
}

// RevokeAccess removes one user's grant on a folder
func (fc *FolderController) RevokeAccess(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}
	granteeID, err := utils.StringToObjectID(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := fc.accessService.RevokeFolderAccess(c.Request.Context(), user, folderID, granteeID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder access revoked", nil)
}
