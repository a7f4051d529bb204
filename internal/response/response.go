package response

import (
	"errors"
	"net/http"

	apperrors "factreel/pkg/errors"

	"github.com/gin-gonic/gin"
)

const successMsg = "Success"

// Response is the standard API response structure
type Response struct {
	Error  int32  `json:"error"`            // Error code (0 = success)
	Msg    string `json:"msg"`              // Human-readable message
	Detail string `json:"detail,omitempty"` // Additional error details
	Data   any    `json:"data"`             // Response payload
}

// R sends a JSON response
func R(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Success returns a success response with data
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Error: 0,
		Msg:   successMsg,
		Data:  data,
	})
}

// Error returns an error response with code and message
func Error(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{
		Error: int32(code),
		Msg:   msg,
		Data:  nil,
	})
}

// FromError converts an error to a Response. An AppError keeps its code,
// message and detail; the stage, when set, is reported as the detail if no
// other detail exists.
func FromError(err error) Response {
	if err == nil {
		return Response{
			Error: 0,
			Msg:   successMsg,
		}
	}

	resp := Response{
		Error: int32(apperrors.GetCode(err)),
		Msg:   apperrors.GetMessage(err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Detail = appErr.Detail
		if resp.Detail == "" && appErr.Stage != apperrors.StageUnknown {
			resp.Detail = "stage: " + string(appErr.Stage)
		}
	}
	return resp
}

// ErrorResponse sends an error response from an error
func ErrorResponse(c *gin.Context, err error) {
	c.JSON(http.StatusOK, FromError(err))
}

// ErrorStatus sends an error response with an explicit HTTP status.
func ErrorStatus(c *gin.Context, status int, err error) {
	c.JSON(status, FromError(err))
}
