package handlers

import (
	"errors"
	"log"
	"net/http"

	"quizzesapi/services"
	"quizzesapi/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON decodes and validates the request body into obj. On failure it
// writes the 400 response and returns false.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, []validation.FieldError(fieldErrs))
		return false
	}
	c.JSON(http.StatusBadRequest, "Malformed request body: "+err.Error())
	return false
}

// pathID parses the named path parameter as a UUID. On failure it writes the
// 400 response and returns false.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps a service failure to its HTTP status and body.
func respondError(c *gin.Context, err error) {
	var domain *services.Error
	switch {
	case errors.As(err, &domain) && errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.Message)
	case errors.As(err, &domain) && errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, domain.Message)
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, "internal server error")
	}
}
