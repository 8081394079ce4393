package ports

// PasswordResetNotice is queued for delivery after a reset was requested.
type PasswordResetNotice struct {
	AccountID string
	Email     string
	Username  string
	Token     string
}

// Notifier delivers account notices asynchronously.
type Notifier interface {
	Enqueue(notice PasswordResetNotice)
}
