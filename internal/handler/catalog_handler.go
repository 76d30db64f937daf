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

// CatalogHandler serves the reader-facing book pages.
type CatalogHandler struct {
	bookService    *service.BookService
	genreService   *service.GenreService
	reviewService  *service.ReviewService
	libraryService *service.LibraryService
}

func NewCatalogHandler(
	bookService *service.BookService,
	genreService *service.GenreService,
	reviewService *service.ReviewService,
	libraryService *service.LibraryService,
) *CatalogHandler {
	return &CatalogHandler{
		bookService:    bookService,
		genreService:   genreService,
		reviewService:  reviewService,
		libraryService: libraryService,
	}
}

// Browse godoc
// GET /browse?searchTerm=&genre=&page=&limit=&sortBy=&order=
// Returns one page of books plus the genre filter list.
func (h *CatalogHandler) Browse(c *gin.Context) {
	var q model.BookQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctx := apiContext(c)
	books, pagination, err := h.bookService.List(ctx, q)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	genres, err := h.genreService.List(ctx, "", 0)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"books":  books,
		"genres": genres,
	}, pagination)
}

// BookDetail godoc
// GET /books/:id
// Returns a book with its approved reviews.
func (h *CatalogHandler) BookDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := apiContext(c)
	book, err := h.bookService.Get(ctx, id)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	reviews, err := h.reviewService.Approved(ctx, id)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"book":    book,
		"reviews": reviews,
	})
}

// AddReview godoc
// POST /books/:id/reviews
func (h *CatalogHandler) AddReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req model.AddReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	review, err := h.reviewService.Add(apiContext(c), id, &req)
	if err != nil {
		response.FailFromAPI(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"review":  review,
		"message": "review submitted for moderation",
	})
}

// AddToShelf godoc
// POST /books/:id/shelf
func (h *CatalogHandler) AddToShelf(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req model.AddToShelfRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	shelf, err := h.libraryService.Add(apiContext(c), middleware.GetSession(c), id, req.ShelfType)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"shelf": shelf})
}
