package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/utils"
)

// Response DTOs shared by every handler.
type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler carries the cross-cutting helpers every handler embeds.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Error(msg, append(args, "error", err)...)
}

// parseIDParam reads a positive integer path parameter.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the identity the middleware resolved for this
// request.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	return id, true
}
