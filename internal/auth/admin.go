package auth

import "time"

// Admin is the back-office principal. Created out-of-band (cmd/seed),
// never through the public API.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
