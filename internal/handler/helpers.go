package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/parsa-dv/messenger/internal/middleware"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
	"github.com/parsa-dv/messenger/internal/pkg/response"
)

func getUserID(c *gin.Context) int64 {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(int64)
	return userID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int64("user_id", getUserID(c)),
		zap.Error(err),
	)
	if ve, ok := appErr.AsValidation(err); ok {
		response.Error(c, 400, ve.Msg)
		return
	}
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, 401, "Invalid username/email or password")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, 400, "User not found")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, 400, "Already exists")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, 429, "Too many requests")
	case errors.Is(err, appErr.ErrDependency):
		response.Error(c, 500, "Failed to send verification email")
	default:
		response.Error(c, 500, "Server error")
	}
}
