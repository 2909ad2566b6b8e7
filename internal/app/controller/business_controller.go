package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antirek/bank/internal/app/service"
	apperrors "github.com/antirek/bank/internal/errors"
	"github.com/antirek/bank/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{
		businessService: businessService,
	}
}

type CreateBusinessRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Slug        string `json:"slug" binding:"required"`
	IsPublic    *bool  `json:"is_public"`
}

type UpdateBusinessRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	Slug        *string `json:"slug"`
	IsPublic    *bool   `json:"is_public"`
}

// List returns active businesses
// GET /api/v1/businesses
func (ctrl *BusinessController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businesses, err := ctrl.businessService.List("")
	if err != nil {
		log.Error("Business list failed", err)
		apperrors.InternalError(c, "failed to list businesses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"total":      len(businesses),
	})
}

// ListMine returns the caller's businesses
// GET /api/v1/businesses/my
func (ctrl *BusinessController) ListMine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	businesses, err := ctrl.businessService.List(ownerID)
	if err != nil {
		log.Error("Business list failed", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		apperrors.InternalError(c, "failed to list businesses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"total":      len(businesses),
	})
}

// Get returns one business by id
// GET /api/v1/businesses/:id
func (ctrl *BusinessController) Get(c *gin.Context) {
	business, err := ctrl.businessService.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
			return
		}
		apperrors.InternalError(c, "failed to get business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// GetBySlug returns one public business by slug
// GET /api/v1/businesses/slug/:slug
func (ctrl *BusinessController) GetBySlug(c *gin.Context) {
	business, err := ctrl.businessService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
			return
		}
		apperrors.InternalError(c, "failed to get business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Create registers a new business owned by the caller
// POST /api/v1/businesses
func (ctrl *BusinessController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and slug are required")
		return
	}

	business, err := ctrl.businessService.Create(c.Request.Context(), ownerID, service.CreateBusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		Slug:        req.Slug,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug):
			apperrors.BadRequest(c, apperrors.ValidationInvalidSlug, "slug may contain only lowercase letters, numbers and hyphens")
		case errors.Is(err, service.ErrSlugTaken):
			apperrors.Conflict(c, apperrors.BusinessSlugExists, "business with this slug already exists")
		case errors.Is(err, service.ErrOwnerNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "owner not found")
		default:
			log.Error("Business creation failed", err, map[string]interface{}{
				"owner_id": ownerID,
			})
			apperrors.InternalError(c, "failed to create business")
		}
		return
	}

	log.Info("Business created", map[string]interface{}{
		"business_id": business.BusinessID,
		"owner_id":    ownerID,
		"slug":        business.Slug,
	})

	c.JSON(http.StatusCreated, gin.H{"business": business})
}

// Update changes the caller's business
// PUT /api/v1/businesses/:id
func (ctrl *BusinessController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	callerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request body")
		return
	}

	business, err := ctrl.businessService.Update(c.Param("id"), callerID, service.UpdateBusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		Slug:        req.Slug,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "only the owner can update this business")
		case errors.Is(err, service.ErrInvalidSlug):
			apperrors.BadRequest(c, apperrors.ValidationInvalidSlug, "slug may contain only lowercase letters, numbers and hyphens")
		case errors.Is(err, service.ErrSlugTaken):
			apperrors.Conflict(c, apperrors.BusinessSlugExists, "business with this slug already exists")
		default:
			log.Error("Business update failed", err, map[string]interface{}{
				"business_id": c.Param("id"),
			})
			apperrors.InternalError(c, "failed to update business")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Deactivate soft-deletes the caller's business
// DELETE /api/v1/businesses/:id
func (ctrl *BusinessController) Deactivate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	callerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	err := ctrl.businessService.Deactivate(c.Param("id"), callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "only the owner can delete this business")
		default:
			log.Error("Business deactivation failed", err, map[string]interface{}{
				"business_id": c.Param("id"),
			})
			apperrors.InternalError(c, "failed to delete business")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Business deleted"})
}
