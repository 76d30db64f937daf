package model

// Genre groups books on the browse page.
type Genre struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// GenreRequest is the payload for creating or updating a genre.
type GenreRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=60"`
	Description string `json:"description" binding:"max=500"`
}
