package handler

import "time"

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
// Fields is only set for validation failures and maps each input field to
// its messages in evaluation order.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token              string `json:"token"                validate:"required"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type profileEditRequest struct {
	Name string `json:"name"`
	// Accepted for form compatibility; never applied.
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type addressRequest struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine  string `json:"address_line"`
	AddressLine2 string `json:"address_line2"`
	TownCity     string `json:"town_city"`
	Postcode     string `json:"postcode"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// --- Response types ---

type accountResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type addressResponse struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	AddressLine  string    `json:"address_line"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	TownCity     string    `json:"town_city"`
	Postcode     string    `json:"postcode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type addressListResponse struct {
	Items []addressResponse `json:"items"`
}

type accountListResponse struct {
	Items      []accountResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
