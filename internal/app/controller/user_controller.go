package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antirek/bank/internal/app/service"
	apperrors "github.com/antirek/bank/internal/errors"
	"github.com/antirek/bank/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type CreateUserRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"` // S3 URL from upload API
}

// List returns active users, optionally filtered by a search term
// GET /api/v1/users?search=
func (ctrl *UserController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.userService.List(c.Query("search"))
	if err != nil {
		log.Error("User list failed", err)
		apperrors.InternalError(c, "failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// Get returns one user
// GET /api/v1/users/:id
func (ctrl *UserController) Get(c *gin.Context) {
	user, err := ctrl.userService.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "user not found")
			return
		}
		apperrors.InternalError(c, "failed to get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Create registers a user directly
// POST /api/v1/users
func (ctrl *UserController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "phone is required")
		return
	}

	user, err := ctrl.userService.Create(c.Request.Context(), service.CreateUserInput{
		Phone:  req.Phone,
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			apperrors.BadRequest(c, apperrors.AuthInvalidPhone, "invalid phone number format")
		case errors.Is(err, service.ErrPhoneExists):
			apperrors.Conflict(c, apperrors.AuthPhoneExists, "user with this phone already exists")
		default:
			log.Error("User creation failed", err)
			apperrors.InternalError(c, "failed to create user")
		}
		return
	}

	log.Info("User created", map[string]interface{}{
		"user_id": user.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// UpdateProfile updates the caller's own profile
// PUT /api/v1/users/:id
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	callerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request body")
		return
	}

	user, err := ctrl.userService.UpdateProfile(c.Param("id"), callerID, service.UpdateProfileInput{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			apperrors.Forbidden(c, "you can only update your own profile")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "user not found")
		default:
			log.Error("Profile update failed", err, map[string]interface{}{
				"user_id": callerID,
			})
			apperrors.InternalError(c, "failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
