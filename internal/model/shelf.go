package model

import "time"

// ShelfType is the reading-status category of a saved book.
type ShelfType string

const (
	ShelfWantToRead       ShelfType = "wantToRead"
	ShelfCurrentlyReading ShelfType = "currentlyReading"
	ShelfRead             ShelfType = "read"
)

// Progress tracks how far a reader is through a book.
type Progress struct {
	PagesRead  int `json:"pagesRead"`
	Percentage int `json:"percentage"`
}

// Shelf is a user's saved association to a book.
type Shelf struct {
	ID         string     `json:"_id"`
	User       string     `json:"user"`
	Book       *Book      `json:"book"`
	ShelfType  ShelfType  `json:"shelfType"`
	Progress   *Progress  `json:"progress,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// AddToShelfRequest puts a book on one of the reader's shelves.
type AddToShelfRequest struct {
	ShelfType ShelfType `json:"shelfType" binding:"required,oneof=wantToRead currentlyReading read"`
}

// UpdateShelfRequest moves a book between shelves or records reading progress.
type UpdateShelfRequest struct {
	ShelfType ShelfType `json:"shelfType" binding:"required,oneof=wantToRead currentlyReading read"`
	PagesRead *int      `json:"pagesRead,omitempty" binding:"omitempty,min=0"`
}
