package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/videoplat/video-processing-service/internal/domain/apperr"
)

// envelope is the uniform response wrapper of the platform's services.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, envelope{Success: false, Message: err.Error()})
}
