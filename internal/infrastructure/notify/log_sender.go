// Package notify holds the delivery backends of the notification dispatcher.
package notify

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

// LogSender writes password reset links to the structured log instead of
// sending e-mail. It is the delivery backend for development and for
// deployments where an external mail relay tails the log stream.
type LogSender struct {
	resetURL string
	log      zerolog.Logger
}

// NewLogSender builds a sender that renders links as resetURL?token=<token>.
func NewLogSender(resetURL string, log zerolog.Logger) *LogSender {
	return &LogSender{resetURL: resetURL, log: log}
}

func (s *LogSender) SendPasswordReset(_ context.Context, n ports.PasswordResetNotice) error {
	link, err := url.Parse(s.resetURL)
	if err != nil {
		return err
	}
	q := link.Query()
	q.Set("token", n.Token)
	link.RawQuery = q.Encode()

	s.log.Info().
		Str("account_id", n.AccountID).
		Str("to", n.Email).
		Str("username", n.Username).
		Str("link", link.String()).
		Msg("password reset link")
	return nil
}
