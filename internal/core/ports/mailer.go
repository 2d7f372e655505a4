package ports

import "context"

// MailMessage is a rendered email ready for delivery.
type MailMessage struct {
	To       string
	Subject  string
	Body     string
	Template string // template name, for logs and metrics only
}

// Mailer delivers mail. Delivery failures must never abort the flow that
// triggered them; callers log and move on.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
