package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/model"
)

// ErrNoSession is returned by per-user operations called without a verified session.
var ErrNoSession = errors.New("no session")

// LibraryService manages a reader's shelves. Every entry is cached per user.
type LibraryService struct {
	resource
}

func NewLibraryService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *LibraryService {
	return &LibraryService{resource: newResource(api, store, ttl, log, "library_service")}
}

// List returns the session owner's shelves.
func (s *LibraryService) List(ctx context.Context, sess *gate.Session) ([]model.Shelf, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	shelves := []model.Shelf{}
	_, err := s.queryUser(ctx, sess, "/user-library", nil, &shelves, cache.TagLibrary)
	if err != nil {
		return nil, err
	}
	return shelves, nil
}

type addShelfBody struct {
	Book      string          `json:"book"`
	ShelfType model.ShelfType `json:"shelfType"`
}

// Add puts bookID on one of the reader's shelves.
func (s *LibraryService) Add(ctx context.Context, sess *gate.Session, bookID string, shelf model.ShelfType) (*model.Shelf, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	var out model.Shelf
	err := s.mutate(ctx, http.MethodPost, "/user-library", addShelfBody{Book: bookID, ShelfType: shelf}, &out,
		s.tagsFor(sess)...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateShelf moves a book to another shelf and optionally records pages read.
func (s *LibraryService) UpdateShelf(ctx context.Context, sess *gate.Session, bookID string, req *model.UpdateShelfRequest) (*model.Shelf, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	var out model.Shelf
	if err := s.mutate(ctx, http.MethodPatch, itemPath("/user-library", bookID), req, &out, s.tagsFor(sess)...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove takes a book off the reader's shelves.
func (s *LibraryService) Remove(ctx context.Context, sess *gate.Session, bookID string) error {
	if sess == nil {
		return ErrNoSession
	}
	return s.mutate(ctx, http.MethodDelete, itemPath("/user-library", bookID), nil, nil, s.tagsFor(sess)...)
}

// tagsFor is what a shelf change invalidates: the owner's pages and the shelf counts on books.
func (s *LibraryService) tagsFor(sess *gate.Session) []string {
	return userTags(sess, cache.TagBooks)
}
