package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/model"
	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/service"
	"github.com/bookworm/bookworm-web/internal/validator"
)

type LibraryHandler struct {
	libraryService *service.LibraryService
}

func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// List godoc
// GET /library, GET /dashboard/user/library
// Returns the reader's shelves grouped by shelf type.
func (h *LibraryHandler) List(c *gin.Context) {
	shelves, err := h.libraryService.List(apiContext(c), middleware.GetSession(c))
	if err != nil {
		failService(c, err)
		return
	}

	grouped := map[model.ShelfType][]model.Shelf{
		model.ShelfWantToRead:       {},
		model.ShelfCurrentlyReading: {},
		model.ShelfRead:             {},
	}
	for _, s := range shelves {
		grouped[s.ShelfType] = append(grouped[s.ShelfType], s)
	}

	response.Success(c, http.StatusOK, gin.H{
		"shelves": grouped,
		"total":   len(shelves),
	})
}

// UpdateShelf godoc
// PATCH /dashboard/user/library/:bookId
func (h *LibraryHandler) UpdateShelf(c *gin.Context) {
	bookID, ok := idParam(c, "bookId")
	if !ok {
		return
	}

	var req model.UpdateShelfRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	shelf, err := h.libraryService.UpdateShelf(apiContext(c), middleware.GetSession(c), bookID, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"shelf": shelf})
}

// Remove godoc
// DELETE /dashboard/user/library/:bookId
func (h *LibraryHandler) Remove(c *gin.Context) {
	bookID, ok := idParam(c, "bookId")
	if !ok {
		return
	}

	if err := h.libraryService.Remove(apiContext(c), middleware.GetSession(c), bookID); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "book removed from library"})
}
