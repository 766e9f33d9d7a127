package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/medscribe/internal/errors"
)

// RespondOK writes a 200 JSON response.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated writes a 201 JSON response.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// RespondNoContent writes an empty 204 response.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondError writes an error as JSON. AppErrors keep their code and HTTP
// status; anything else becomes a generic internal error.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, appErr.ToResponse())
		return
	}
	internal := errors.Internal(err)
	c.JSON(http.StatusInternalServerError, internal.ToResponse())
}
