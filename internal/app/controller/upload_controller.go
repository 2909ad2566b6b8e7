package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/antirek/bank/internal/errors"
	"github.com/antirek/bank/internal/middleware"
	"github.com/antirek/bank/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(s3Storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: s3Storage,
	}
}

type PresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=logo avatar"`
}

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

// GetPresignedURL issues a pre-signed S3 upload URL for a logo or avatar
// image. The client uploads directly to S3 and stores the returned file URL
// on the business or profile afterwards.
// POST /api/v1/uploads/presigned-url
func (ctrl *UploadController) GetPresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename, content_type and kind (logo or avatar) are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "only jpeg, png, webp and gif images are allowed")
		return
	}

	folder := storage.FolderAvatars
	if req.Kind == "logo" {
		folder = storage.FolderLogos
	}

	result, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Presigned URL generation failed", err, map[string]interface{}{
			"user_id": userID,
			"kind":    req.Kind,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, result)
}
