package model

import "time"

// Tutorial is a curated YouTube video shown on the tutorials page.
type Tutorial struct {
	ID             string    `json:"_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	YoutubeURL     string    `json:"youtubeURL"`
	YoutubeVideoID string    `json:"youtubeVideoId"`
	Thumbnail      string    `json:"thumbnail,omitempty"`
	AddedBy        *User     `json:"addedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TutorialRequest is the payload for creating or updating a tutorial.
type TutorialRequest struct {
	Title          string `json:"title" binding:"required,min=2,max=200"`
	Description    string `json:"description" binding:"max=2000"`
	YoutubeURL     string `json:"youtubeURL" binding:"required,url"`
	YoutubeVideoID string `json:"youtubeVideoId,omitempty"`
}
