package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/model"
)

const (
	defaultBookPage  = 1
	defaultBookLimit = 12
)

// BookService reads and edits the catalogue.
type BookService struct {
	resource
}

// NewBookService creates a new BookService.
func NewBookService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *BookService {
	return &BookService{resource: newResource(api, store, ttl, log, "book_service")}
}

// List returns one page of books matching q.
func (s *BookService) List(ctx context.Context, q model.BookQuery) ([]model.Book, *model.Pagination, error) {
	books := []model.Book{}
	pg, err := s.query(ctx, "", "/books", bookValues(q), &books, cache.TagBooks)
	if err != nil {
		return nil, nil, err
	}
	return books, pg, nil
}

// Get returns a single book.
func (s *BookService) Get(ctx context.Context, id string) (*model.Book, error) {
	var book model.Book
	if _, err := s.query(ctx, "", itemPath("/books", id), nil, &book, cache.TagBooks); err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	var book model.Book
	if err := s.mutate(ctx, http.MethodPost, "/books", req, &book, cache.TagBooks, cache.TagStats); err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookService) Update(ctx context.Context, id string, req *model.UpdateBookRequest) (*model.Book, error) {
	var book model.Book
	if err := s.mutate(ctx, http.MethodPatch, itemPath("/books", id), req, &book, cache.TagBooks, cache.TagLibrary); err != nil {
		return nil, err
	}
	return &book, nil
}

// Delete removes a book. Shelves holding it change too, so Library is dropped as well.
func (s *BookService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodDelete, itemPath("/books", id), nil, nil,
		cache.TagBooks, cache.TagLibrary, cache.TagReviews, cache.TagStats)
}

// bookValues encodes q in the API's query format, applying browse-page defaults.
func bookValues(q model.BookQuery) url.Values {
	v := url.Values{}
	if q.SearchTerm != "" {
		v.Set("searchTerm", q.SearchTerm)
	}
	for _, g := range q.Genre {
		if g != "" {
			v.Add("genre", g)
		}
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = defaultBookPage
	}
	if limit < 1 {
		limit = defaultBookLimit
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))

	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		order := q.Order
		if order == "" {
			order = "desc"
		}
		v.Set("order", order)
	}
	return v
}
