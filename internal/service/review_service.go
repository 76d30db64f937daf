package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/model"
)

// ReviewService handles review submission and moderation.
type ReviewService struct {
	resource
}

func NewReviewService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *ReviewService {
	return &ReviewService{resource: newResource(api, store, ttl, log, "review_service")}
}

type addReviewBody struct {
	Book       string `json:"book"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

// Add submits a review for bookID. It enters moderation as pending.
func (s *ReviewService) Add(ctx context.Context, bookID string, req *model.AddReviewRequest) (*model.Review, error) {
	body := addReviewBody{Book: bookID, Rating: req.Rating, ReviewText: req.ReviewText}

	var review model.Review
	if err := s.mutate(ctx, http.MethodPost, "/reviews", body, &review, cache.TagReviews, cache.TagStats); err != nil {
		return nil, err
	}
	return &review, nil
}

// Pending lists reviews awaiting moderation.
func (s *ReviewService) Pending(ctx context.Context) ([]model.Review, error) {
	reviews := []model.Review{}
	if _, err := s.query(ctx, "", "/reviews/pending", nil, &reviews, cache.TagReviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Approved lists the published reviews of a book.
func (s *ReviewService) Approved(ctx context.Context, bookID string) ([]model.Review, error) {
	reviews := []model.Review{}
	if _, err := s.query(ctx, "", itemPath("/reviews/approved", bookID), nil, &reviews, cache.TagReviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Approve publishes a review; the book's rating changes with it.
func (s *ReviewService) Approve(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodPatch, itemPath("/reviews", id)+"/approve", nil, nil,
		cache.TagReviews, cache.TagBooks, cache.TagStats)
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodDelete, itemPath("/reviews", id), nil, nil,
		cache.TagReviews, cache.TagBooks, cache.TagStats)
}
