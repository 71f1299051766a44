package model

// Account is the signed-in identity that owns a cloud copy of the tracked list
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
