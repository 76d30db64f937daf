package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/model"
	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/service"
	"github.com/bookworm/bookworm-web/internal/validator"
)

// AdminHandler serves /dashboard/admin. The gate has already rejected non-admins.
type AdminHandler struct {
	bookService     *service.BookService
	genreService    *service.GenreService
	tutorialService *service.TutorialService
	reviewService   *service.ReviewService
	userService     *service.UserService
}

func NewAdminHandler(
	bookService *service.BookService,
	genreService *service.GenreService,
	tutorialService *service.TutorialService,
	reviewService *service.ReviewService,
	userService *service.UserService,
) *AdminHandler {
	return &AdminHandler{
		bookService:     bookService,
		genreService:    genreService,
		tutorialService: tutorialService,
		reviewService:   reviewService,
		userService:     userService,
	}
}

// ─── Books ───────────────────────────────────────────────────────────────

// ListBooks godoc
// GET /dashboard/admin/books
func (h *AdminHandler) ListBooks(c *gin.Context) {
	var q model.BookQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	books, pagination, err := h.bookService.List(apiContext(c), q)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, books, pagination)
}

// CreateBook godoc
// POST /dashboard/admin/books
func (h *AdminHandler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	book, err := h.bookService.Create(apiContext(c), &req)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusCreated, book)
}

// UpdateBook godoc
// PATCH /dashboard/admin/books/:id
func (h *AdminHandler) UpdateBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	book, err := h.bookService.Update(apiContext(c), id, &req)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// DeleteBook godoc
// DELETE /dashboard/admin/books/:id
func (h *AdminHandler) DeleteBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.bookService.Delete(apiContext(c), id); err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "book deleted"})
}

// ─── Genres ──────────────────────────────────────────────────────────────

// ListGenres godoc
// GET /dashboard/admin/genres?searchTerm=
func (h *AdminHandler) ListGenres(c *gin.Context) {
	genres, err := h.genreService.List(apiContext(c), c.Query("searchTerm"), 0)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, genres)
}

// CreateGenre godoc
// POST /dashboard/admin/genres
func (h *AdminHandler) CreateGenre(c *gin.Context) {
	var req model.GenreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	genre, err := h.genreService.Create(apiContext(c), &req)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusCreated, genre)
}

// UpdateGenre godoc
// PATCH /dashboard/admin/genres/:id
func (h *AdminHandler) UpdateGenre(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req model.GenreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	genre, err := h.genreService.Update(apiContext(c), id, &req)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// DeleteGenre godoc
// DELETE /dashboard/admin/genres/:id
func (h *AdminHandler) DeleteGenre(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.genreService.Delete(apiContext(c), id); err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "genre deleted"})
}

// ─── Tutorials ───────────────────────────────────────────────────────────

// CreateTutorial godoc
// POST /dashboard/admin/tutorials
func (h *AdminHandler) CreateTutorial(c *gin.Context) {
	var req model.TutorialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	tutorial, err := h.tutorialService.Create(apiContext(c), &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tutorial)
}

// UpdateTutorial godoc
// PATCH /dashboard/admin/tutorials/:id
func (h *AdminHandler) UpdateTutorial(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req model.TutorialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	tutorial, err := h.tutorialService.Update(apiContext(c), id, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, tutorial)
}

// DeleteTutorial godoc
// DELETE /dashboard/admin/tutorials/:id
func (h *AdminHandler) DeleteTutorial(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.tutorialService.Delete(apiContext(c), id); err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "tutorial deleted"})
}

// ─── Reviews ─────────────────────────────────────────────────────────────

// PendingReviews godoc
// GET /dashboard/admin/reviews
func (h *AdminHandler) PendingReviews(c *gin.Context) {
	reviews, err := h.reviewService.Pending(apiContext(c))
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, reviews)
}

// ApproveReview godoc
// PATCH /dashboard/admin/reviews/:id/approve
func (h *AdminHandler) ApproveReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Approve(apiContext(c), id); err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "review approved"})
}

// DeleteReview godoc
// DELETE /dashboard/admin/reviews/:id
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(apiContext(c), id); err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "review deleted"})
}

// ─── Users ───────────────────────────────────────────────────────────────

// ListUsers godoc
// GET /dashboard/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(apiContext(c))
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// UpdateUserRole godoc
// PATCH /dashboard/admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.UpdateRole(apiContext(c), id, req.Role)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DeleteUser godoc
// DELETE /dashboard/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(apiContext(c), id); err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "user deleted"})
}
