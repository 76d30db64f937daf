package model

import "time"

// ShelfCount holds how many readers have a book on each shelf.
type ShelfCount struct {
	WantToRead       int `json:"wantToRead"`
	CurrentlyReading int `json:"currentlyReading"`
	Read             int `json:"read"`
}

// Book is a catalogue entry.
type Book struct {
	ID            string     `json:"_id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Genre         *Genre     `json:"genre,omitempty"`
	Description   string     `json:"description"`
	CoverImage    string     `json:"coverImage"`
	PDFFile       string     `json:"pdfFile,omitempty"`
	PDFURL        string     `json:"pdfUrl,omitempty"`
	TotalPages    int        `json:"totalPages"`
	AverageRating float64    `json:"averageRating"`
	TotalReviews  int        `json:"totalReviews"`
	ShelfCount    ShelfCount `json:"shelfCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CreateBookRequest is the payload for adding a book to the catalogue.
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Author      string `json:"author" binding:"required,min=1,max=120"`
	Genre       string `json:"genre" binding:"required"`
	Description string `json:"description" binding:"max=5000"`
	CoverImage  string `json:"coverImage" binding:"omitempty,url"`
	PDFFile     string `json:"pdfFile" binding:"omitempty,url"`
	TotalPages  int    `json:"totalPages" binding:"required,min=1"`
}

// UpdateBookRequest is the payload for editing a book. Zero fields are left unchanged.
type UpdateBookRequest struct {
	Title       string `json:"title,omitempty" binding:"omitempty,max=200"`
	Author      string `json:"author,omitempty" binding:"omitempty,max=120"`
	Genre       string `json:"genre,omitempty"`
	Description string `json:"description,omitempty" binding:"omitempty,max=5000"`
	CoverImage  string `json:"coverImage,omitempty" binding:"omitempty,url"`
	PDFFile     string `json:"pdfFile,omitempty" binding:"omitempty,url"`
	TotalPages  int    `json:"totalPages,omitempty" binding:"omitempty,min=1"`
}

// BookQuery filters the catalogue listing.
type BookQuery struct {
	SearchTerm string   `form:"searchTerm"`
	Genre      []string `form:"genre"`
	Page       int      `form:"page" binding:"omitempty,min=1"`
	Limit      int      `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy     string   `form:"sortBy" binding:"omitempty,oneof=createdAt title author averageRating totalReviews"`
	Order      string   `form:"order" binding:"omitempty,oneof=asc desc"`
}
