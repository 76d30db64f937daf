package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/service"
)

// failService maps service sentinels first, then falls back to the API mapping.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, service.ErrInvalidYoutubeURL):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"youtubeURL": err.Error()})
	default:
		response.FailFromAPI(c, err)
	}
}
