package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafli4514/absensi-magang-sub001/internal/attendance"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code     string         `json:"code"`
	Category string         `json:"category"`
	Message  string         `json:"message"`
	Meta     map[string]any `json:"meta,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// respondError maps an admission error to its envelope; anything else is a
// generic 500 with the cause logged, never leaked.
func respondError(c *gin.Context, err error) {
	var aerr *attendance.Error
	if errors.As(err, &aerr) {
		c.JSON(aerr.HTTPStatus, envelope{
			Success: false,
			Message: aerr.Message,
			Error: &errorBody{
				Code:     aerr.Code,
				Category: string(aerr.Category),
				Message:  aerr.Message,
				Meta:     aerr.Meta,
			},
		})
		return
	}
	log.Printf("httpapi: internal error: %v", err)
	c.JSON(http.StatusInternalServerError, envelope{
		Success: false,
		Message: "an unexpected internal error occurred",
		Error: &errorBody{
			Code:     "INTERNAL",
			Category: string(attendance.CategoryInternal),
			Message:  "an unexpected internal error occurred",
		},
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: message,
		Error:   &errorBody{Code: "VALIDATION", Category: string(attendance.CategoryValidation), Message: message},
	})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, envelope{
		Success: false,
		Message: message,
		Error:   &errorBody{Code: "NOT_FOUND", Category: string(attendance.CategoryNotFound), Message: message},
	})
}

func respondForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, envelope{
		Success: false,
		Message: message,
		Error:   &errorBody{Code: "FORBIDDEN", Category: string(attendance.CategoryValidation), Message: message},
	})
}
