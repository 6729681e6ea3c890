package controllers

import (
	"io"
	"net/http"
	"strconv"

	"capidrive/models"
	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FileController struct {
	fileService   *services.FileService
	accessService *services.AccessService
	maxUploadSize int64
}

func NewFileController(fileService *services.FileService, accessService *services.AccessService, maxUploadSize int64) *FileController {
	return &FileController{
		fileService:   fileService,
		accessService: accessService,
		maxUploadSize: maxUploadSize,
	}
}

// Upload handles multipart file uploads
func (fc *FileController) Upload(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided")
		return
	}
	src, err := header.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to read upload")
		return
	}
	defer src.Close()

	input := &services.UploadInput{
		Filename:    header.Filename,
		Description: c.PostForm("description"),
		FolderID:    c.PostForm("folder_id"),
		Size:        header.Size,
		Reader:      src,
	}

	file, err := fc.fileService.Upload(c.Request.Context(), user, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "File uploaded", file)
}

// List returns the user's own and uploaded files
func (fc *FileController) List(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	files, err := fc.fileService.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Files retrieved", files)
}

// Get returns a single file's metadata
func (fc *FileController) Get(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	file, err := fc.fileService.Get(c.Request.Context(), user, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File retrieved", file)
}

// Download streams the file's content
func (fc *FileController) Download(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	file, blob, err := fc.fileService.Download(c.Request.Context(), user, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer blob.Close()

	streamFile(c, file.Filename, file.Size, blob)
}

// Thumbnail streams the file's thumbnail
func (fc *FileController) Thumbnail(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	_, blob, err := fc.fileService.Thumbnail(c.Request.Context(), user, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer blob.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, blob); err != nil {
		logrus.WithError(err).Warn("thumbnail download interrupted")
	}
}

// Update renames or re-describes a file
func (fc *FileController) Update(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	var req models.FileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	file, err := fc.fileService.Update(c.Request.Context(), user, fileID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File updated", file)
}

// Move relocates a file to another folder or the root
func (fc *FileController) Move(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	var req models.FileMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	file, err := fc.fileService.Move(c.Request.Context(), user, fileID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File moved", file)
}

// MarkViewed flags a file as seen by its owner
func (fc *FileController) MarkViewed(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	if err := fc.fileService.MarkViewed(c.Request.Context(), user, fileID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File marked as viewed", nil)
}

// Delete removes a file
func (fc *FileController) Delete(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	if err := fc.fileService.Delete(c.Request.Context(), user, fileID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File deleted", nil)
}

// GrantAccess shares a file with another user
func (fc *FileController) GrantAccess(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
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

	grant, err := fc.accessService.GrantFileAccess(c.Request.Context(), user, fileID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "File access granted", grant)
}

// ListAccess lists a file's grants
func (fc *FileController) ListAccess(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	grants, err := fc.accessService.ListFileAccess(c.Request.Context(), user, fileID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File access list retrieved", grants)
}

// RevokeAccess removes one user's grant on a file
func (fc *FileController) RevokeAccess(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}
	granteeID, err := utils.StringToObjectID(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	if err := fc.accessService.RevokeFileAccess(c.Request.Context(), user, fileID, granteeID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File access revoked", nil)
}

func streamFile(c *gin.Context, filename string, size int64, blob io.Reader) {
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if size > 0 {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, blob); err != nil {
		logrus.WithError(err).Warn("file download interrupted")
	}
}
