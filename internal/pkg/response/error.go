package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    apperror.Kind  `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Error sends a JSON error response.
// AppErrors carry their own status code. Anything else is logged and reported as 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		c.JSON(appErr.Code, ErrorResponse{
			Error:   appErr.Message,
			Kind:    appErr.Kind,
			Details: appErr.Details,
		})
		return
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest reports a binding or parsing failure.
func BadRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message, Kind: apperror.KindValidation}
	if err != nil {
		resp.Details = map[string]any{"reason": err.Error()}
	}
	c.JSON(http.StatusBadRequest, resp)
}

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestID"
