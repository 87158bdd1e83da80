package domain

import "time"

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // "customer", "staff" or "admin"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RegisteredForPronostics bool       `json:"registered_for_pronostics"`
	RegisteredAt            *time.Time `json:"registered_at,omitempty"`
}
