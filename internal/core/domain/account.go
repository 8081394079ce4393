package domain

import "time"

// Account is a storefront customer's authentication and profile record.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	Groups       []string  `json:"groups,omitempty"`
	Permissions  []string  `json:"permissions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountFilter carries the admin listing parameters.
type AccountFilter struct {
	Search    string // partial, case-insensitive match on username or email
	Superuser *bool  // nil = no filter
	Page      int    // 1-based
	Limit     int
}
