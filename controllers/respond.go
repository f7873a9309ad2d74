package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"runcrew-api/services"
	"runcrew-api/utils"
)

// respondError maps service-layer sentinel errors to HTTP statuses.
// Anything unrecognized is an internal error; the wrapped detail stays
// out of the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.SendError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.SendError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.SendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.SendError(c, http.StatusConflict, err.Error())
	default:
		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
	}
}
