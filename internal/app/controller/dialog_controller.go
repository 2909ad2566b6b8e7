package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/antirek/bank/internal/app/service"
	apperrors "github.com/antirek/bank/internal/errors"
	"github.com/antirek/bank/internal/middleware"
)

type DialogController struct {
	dialogService service.DialogService
}

func NewDialogController(dialogService service.DialogService) *DialogController {
	return &DialogController{
		dialogService: dialogService,
	}
}

type StartDialogRequest struct {
	BusinessID string `json:"business_id" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

// respondDialogError translates the shared dialog error cases. Returns false
// when the error was not one of them.
func respondDialogError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrDialogNotFound):
		apperrors.NotFound(c, apperrors.DialogNotFound, "dialog not found")
	case errors.Is(err, service.ErrAccessDenied):
		apperrors.Forbidden(c, "you are not a participant of this dialog")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		apperrors.UpstreamError(c, "message service is unavailable")
	default:
		return false
	}
	return true
}

// Start opens a dialog with a business
// POST /api/v1/dialogs
func (ctrl *DialogController) Start(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req StartDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "business_id is required")
		return
	}

	dialog, created, err := ctrl.dialogService.Start(c.Request.Context(), req.BusinessID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrOwnerNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "dialog participant not found")
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.Forbidden(c, "cannot start a dialog with your own business")
		case errors.Is(err, service.ErrNotProvisioned):
			apperrors.RespondWithError(c, http.StatusConflict, apperrors.AuthNotProvisioned, "messaging identity is not ready yet")
		case errors.Is(err, service.ErrUpstreamUnavailable):
			apperrors.UpstreamError(c, "message service is unavailable")
		default:
			log.Error("Dialog start failed", err, map[string]interface{}{
				"business_id": req.BusinessID,
				"user_id":     userID,
			})
			apperrors.InternalError(c, "failed to start dialog")
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"dialog":  dialog,
		"created": created,
	})
}

// ListMine returns the caller's dialogs as a customer
// GET /api/v1/dialogs
func (ctrl *DialogController) ListMine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	page, limit := pageParams(c)
	dialogs, err := ctrl.dialogService.ListForUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		log.Error("Dialog list failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "failed to list dialogs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dialogs": dialogs,
		"total":   len(dialogs),
	})
}

// ListForBusiness returns the customer dialogs of the caller's business
// GET /api/v1/businesses/:id/dialogs?search=
func (ctrl *DialogController) ListForBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	businessID := c.Param("id")

	page, limit := pageParams(c)
	dialogs, err := ctrl.dialogService.ListForBusiness(c.Request.Context(), businessID, ownerID, page, limit, c.Query("search"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "only the owner can view business dialogs")
		default:
			log.Error("Business dialog list failed", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "failed to list dialogs")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dialogs": dialogs,
		"total":   len(dialogs),
	})
}

// Get returns one dialog
// GET /api/v1/dialogs/:id
func (ctrl *DialogController) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	dialog, err := ctrl.dialogService.GetByID(c.Param("id"), userID)
	if err != nil {
		if !respondDialogError(c, err) {
			apperrors.InternalError(c, "failed to get dialog")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"dialog": dialog})
}

// ListMessages returns one page of the dialog's messages, oldest first
// GET /api/v1/dialogs/:id/messages?page=&limit=&before=
func (ctrl *DialogController) ListMessages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "before must be an RFC3339 timestamp")
			return
		}
		before = &parsed
	}

	page, limit := pageParams(c)
	messages, err := ctrl.dialogService.ListMessages(c.Request.Context(), c.Param("id"), userID, page, limit, before)
	if err != nil {
		if !respondDialogError(c, err) {
			log.Error("Message list failed", err, map[string]interface{}{
				"dialog_id": c.Param("id"),
			})
			apperrors.InternalError(c, "failed to list messages")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages.Messages,
		"has_more": messages.HasMore,
		"total":    messages.Total,
	})
}

// SendMessage posts a message into the dialog
// POST /api/v1/dialogs/:id/messages
func (ctrl *DialogController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationEmptyMessage, "content is required")
		return
	}

	message, err := ctrl.dialogService.Send(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			apperrors.BadRequest(c, apperrors.ValidationEmptyMessage, "message content is required")
		case errors.Is(err, service.ErrNotProvisioned):
			apperrors.RespondWithError(c, http.StatusConflict, apperrors.AuthNotProvisioned, "messaging identity is not ready yet")
		default:
			if !respondDialogError(c, err) {
				log.Error("Message send failed", err, map[string]interface{}{
					"dialog_id": c.Param("id"),
					"sender_id": userID,
				})
				apperrors.InternalError(c, "failed to send message")
			}
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// MarkRead zeroes the caller's unread counter for the dialog
// POST /api/v1/dialogs/:id/read
func (ctrl *DialogController) MarkRead(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	unread, err := ctrl.dialogService.MarkRead(c.Param("id"), userID)
	if err != nil {
		if !respondDialogError(c, err) {
			log.Error("Mark read failed", err, map[string]interface{}{
				"dialog_id": c.Param("id"),
			})
			apperrors.InternalError(c, "failed to mark dialog as read")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"unreadCount": unread})
}
