package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
	"github.com/accessgenius/assessment-service/internal/utils"
	"github.com/accessgenius/assessment-service/internal/validator"
)

// UserHandler manages user rows in the entity store directly through the
// repository. Session issuance and credential verification belong to the
// external auth collaborator.
type UserHandler struct {
	BaseHandler
	userRepo  repositories.UserRepository
	validator *validator.Validator
}

func NewUserHandler(userRepo repositories.UserRepository, v *validator.Validator, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
		validator:   v,
	}
}

// CreateUser registers a user record.
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req validator.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: errs,
		})
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
	}
	if err := h.userRepo.Create(c.Request.Context(), nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Message: "Username or email already registered",
			})
			return
		}
		h.LogError(c, err, "Failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to create user",
		})
		return
	}

	h.LogRequest(c, "User created", "user_id", user.ID)
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "User created successfully",
		Data:    gin.H{"id": user.ID, "username": user.Username, "email": user.Email},
	})
}

// GetUser returns one user record.
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: "User not found",
			})
			return
		}
		h.LogError(c, err, "Failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and, through the cascades, every assessment,
// question and feedback row the user owns.
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userRepo.Delete(c.Request.Context(), nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: "User not found",
			})
			return
		}
		h.LogError(c, err, "Failed to delete user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to delete user",
		})
		return
	}

	h.LogRequest(c, "User deleted", "user_id", id)
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User deleted successfully",
	})
}
