package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/service"
)

type TutorialHandler struct {
	tutorialService *service.TutorialService
}

func NewTutorialHandler(tutorialService *service.TutorialService) *TutorialHandler {
	return &TutorialHandler{tutorialService: tutorialService}
}

// List godoc
// GET /tutorials
func (h *TutorialHandler) List(c *gin.Context) {
	tutorials, err := h.tutorialService.List(apiContext(c))
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, tutorials)
}
