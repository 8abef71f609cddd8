package handler

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/clinic-api/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

func NewErrorResponse(message string) Response {
	return Response{Status: "error", Message: message}
}

// RespondWithError renders an error with the HTTP status implied by its
// code. Anything that is not an AppError is treated as internal and its
// detail kept out of the response body.
func RespondWithError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !goerrors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}
	c.JSON(httpStatus(appErr.Code), NewErrorResponse(appErr.Message))
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
