// Package respond renders engine results and failures as JSON responses.
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"hrtracker/services"
)

// Status maps an engine error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrIllegalOrder),
		errors.Is(err, services.ErrIllegalHierarchy):
		return http.StatusConflict
	case errors.Is(err, services.ErrResourceLimit):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func Error(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("unexpected failure")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func BadInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
}

// Actor returns the employee set by the access token middleware.
func Actor(c *gin.Context) string {
	return c.MustGet("userId").(string)
}
