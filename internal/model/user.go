package model

// User is an account as returned by the library API.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`
	Role     Role   `json:"role"`
}
