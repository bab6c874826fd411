package domain

// User is the account returned by the platform for a bearer token.
// It exists only for the lifetime of one request.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	// Attributes holds the full user object as sent by the platform.
	Attributes map[string]any `json:"attributes,omitempty"`
}
