package mail

import "context"

type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer envía emails transaccionales / newsletter.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
