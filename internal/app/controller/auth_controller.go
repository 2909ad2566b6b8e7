package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antirek/bank/internal/app/service"
	apperrors "github.com/antirek/bank/internal/errors"
	"github.com/antirek/bank/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// SendCode handles verification code requests
// POST /api/v1/auth/send-code
func (ctrl *AuthController) SendCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "phone is required")
		return
	}

	if err := ctrl.authService.SendCode(c.Request.Context(), req.Phone); err != nil {
		if errors.Is(err, service.ErrInvalidPhone) {
			apperrors.BadRequest(c, apperrors.AuthInvalidPhone, "invalid phone number format")
			return
		}
		log.Error("Send code failed", err, map[string]interface{}{
			"phone": req.Phone,
		})
		apperrors.InternalError(c, "failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent",
	})
}

// VerifyCode handles code verification and login
// POST /api/v1/auth/verify-code
func (ctrl *AuthController) VerifyCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "phone and code are required")
		return
	}

	result, err := ctrl.authService.VerifyCode(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			apperrors.BadRequest(c, apperrors.AuthInvalidPhone, "invalid phone number format")
		case errors.Is(err, service.ErrCodeInvalid):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthCodeInvalid, "invalid or expired code")
		case errors.Is(err, service.ErrTooManyAttempts):
			apperrors.RespondWithError(c, http.StatusTooManyRequests, apperrors.AuthTooManyTries, "too many attempts, request a new code")
		default:
			log.Error("Code verification failed", err, map[string]interface{}{
				"phone": req.Phone,
			})
			apperrors.InternalError(c, "failed to verify code")
		}
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": result.User.UserID,
		"is_new":  result.IsNew,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":  result.Token,
		"is_new": result.IsNew,
		"user":   result.User,
	})
}
