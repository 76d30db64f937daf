package model

import "time"

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is a reader's rating of a book. Book is either an id or an expanded object
// depending on the endpoint, so it is kept raw.
type Review struct {
	ID         string       `json:"_id"`
	Book       any          `json:"book"`
	User       *User        `json:"user,omitempty"`
	Rating     int          `json:"rating"`
	ReviewText string       `json:"reviewText"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// AddReviewRequest is the payload a reader submits from the book page.
type AddReviewRequest struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText string `json:"reviewText" binding:"required,min=3,max=2000"`
}
