package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Desarso/agentstudio/chat"
	"github.com/Desarso/agentstudio/models"
	"github.com/Desarso/agentstudio/studio"
)

func ok[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, models.Success(data))
}

func fail(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, models.Failure(code, message))
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var internal *studio.ServiceInternalError
	switch {
	case errors.Is(err, studio.ErrClientNotFound):
		fail(c, http.StatusNotFound, models.CodeNotFound, err.Error())
	case errors.Is(err, chat.ErrEmptyUserText):
		fail(c, http.StatusBadRequest, models.CodeInvalid, err.Error())
	case errors.As(err, &internal):
		fail(c, http.StatusInternalServerError, models.CodeInternal, internal.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, models.CodeInternal, err.Error())
	}
}
