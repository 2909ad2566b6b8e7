package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antirek/bank/internal/app/service"
	apperrors "github.com/antirek/bank/internal/errors"
	"github.com/antirek/bank/internal/middleware"
)

type SubscriptionController struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionController(subscriptionService service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
	}
}

// Subscribe subscribes the caller to a business
// POST /api/v1/businesses/:id/subscribe
func (ctrl *SubscriptionController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	businessID := c.Param("id")

	subscription, err := ctrl.subscriptionService.Subscribe(c.Request.Context(), businessID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "user not found")
		case errors.Is(err, service.ErrAlreadySubscribed):
			apperrors.Conflict(c, apperrors.SubscriptionExists, "already subscribed to this business")
		default:
			log.Error("Subscribe failed", err, map[string]interface{}{
				"business_id": businessID,
				"user_id":     userID,
			})
			apperrors.InternalError(c, "failed to subscribe")
		}
		return
	}

	log.Info("Subscribed", map[string]interface{}{
		"business_id": businessID,
		"user_id":     userID,
	})

	c.JSON(http.StatusCreated, gin.H{"subscription": subscription})
}

// Unsubscribe removes the caller's subscription
// DELETE /api/v1/businesses/:id/subscribe
func (ctrl *SubscriptionController) Unsubscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	businessID := c.Param("id")

	if err := ctrl.subscriptionService.Unsubscribe(businessID, userID); err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			apperrors.NotFound(c, apperrors.SubscriptionNotFound, "no active subscription found")
			return
		}
		log.Error("Unsubscribe failed", err, map[string]interface{}{
			"business_id": businessID,
			"user_id":     userID,
		})
		apperrors.InternalError(c, "failed to unsubscribe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

// ListMine returns the businesses the caller follows
// GET /api/v1/subscriptions
func (ctrl *SubscriptionController) ListMine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	businesses, err := ctrl.subscriptionService.ListForUser(userID)
	if err != nil {
		log.Error("Subscription list failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "failed to list subscriptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"total":      len(businesses),
	})
}

// ListSubscribers returns the subscribers of the caller's business
// GET /api/v1/businesses/:id/subscribers
func (ctrl *SubscriptionController) ListSubscribers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	businessID := c.Param("id")

	subscribers, err := ctrl.subscriptionService.ListSubscribers(businessID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "only the owner can view subscribers")
		default:
			log.Error("Subscriber list failed", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "failed to list subscribers")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscribers": subscribers,
		"total":       len(subscribers),
	})
}

// ExportSubscribers downloads the subscriber list as an XLSX file
// GET /api/v1/businesses/:id/subscribers/export
func (ctrl *SubscriptionController) ExportSubscribers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	businessID := c.Param("id")

	data, filename, err := ctrl.subscriptionService.ExportSubscribers(businessID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "only the owner can export subscribers")
		default:
			log.Error("Subscriber export failed", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "failed to export subscribers")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
