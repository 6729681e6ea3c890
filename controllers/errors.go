package controllers

import (
	"errors"

	"capidrive/services"
	"capidrive/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// handleServiceError translates service sentinels into HTTP responses.
// Anything unrecognized is logged and surfaced as a 500.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "User not found")
	case errors.Is(err, services.ErrShareLinkNotFound):
		utils.NotFoundResponse(c, "Share link not found")
	case errors.Is(err, services.ErrShareLinkExpired):
		utils.GoneResponse(c, "Share link has expired")
	case errors.Is(err, services.ErrAuthRequired):
		utils.UnauthorizedResponse(c, "Authentication required")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, "Invalid username or password")
	case errors.Is(err, services.ErrInsufficientPermission), errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrCannotRemoveOriginal):
		utils.ConflictResponse(c, "Owners and uploaders always keep full access")
	case errors.Is(err, services.ErrDuplicateFolder):
		utils.ConflictResponse(c, "A folder with this name already exists here")
	case errors.Is(err, services.ErrUserExists):
		utils.ConflictResponse(c, "Username or email already registered")
	case errors.Is(err, services.ErrInvalidShareTarget):
		utils.BadRequestResponse(c, "Share link must target exactly one file or folder")
	case errors.Is(err, services.ErrBlockedFileType):
		utils.BadRequestResponse(c, "This file type is not allowed")
	case errors.Is(err, services.ErrNoThumbnail):
		utils.NotFoundResponse(c, "File has no thumbnail")
	default:
		logrus.WithError(err).Error("unhandled service error")
		utils.InternalServerErrorResponse(c, "")
	}
}
