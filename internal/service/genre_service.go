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

type GenreService struct {
	resource
}

func NewGenreService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *GenreService {
	return &GenreService{resource: newResource(api, store, ttl, log, "genre_service")}
}

func (s *GenreService) List(ctx context.Context, searchTerm string, limit int) ([]model.Genre, error) {
	q := url.Values{}
	if searchTerm != "" {
		q.Set("searchTerm", searchTerm)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	genres := []model.Genre{}
	if _, err := s.query(ctx, "", "/genres", q, &genres, cache.TagGenres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (s *GenreService) Create(ctx context.Context, req *model.GenreRequest) (*model.Genre, error) {
	var g model.Genre
	if err := s.mutate(ctx, http.MethodPost, "/genres", req, &g, cache.TagGenres, cache.TagStats); err != nil {
		return nil, err
	}
	return &g, nil
}

// Update renames a genre. Books embed their genre, so Books is invalidated too.
func (s *GenreService) Update(ctx context.Context, id string, req *model.GenreRequest) (*model.Genre, error) {
	var g model.Genre
	if err := s.mutate(ctx, http.MethodPatch, itemPath("/genres", id), req, &g, cache.TagGenres, cache.TagBooks, cache.TagStats); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GenreService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodDelete, itemPath("/genres", id), nil, nil, cache.TagGenres, cache.TagBooks, cache.TagStats)
}
