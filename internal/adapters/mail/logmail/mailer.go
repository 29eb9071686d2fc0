// Package logmail no envía nada: registra cada mensaje. Se usa cuando no hay SMTP configurado.
package logmail

import (
	"context"

	"go.uber.org/zap"

	"kennel-exchange/internal/platform/logger"
	"kennel-exchange/internal/ports/mail"
)

type Mailer struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Mailer {
	return &Mailer{log: logger.OrNop(log)}
}

func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	m.log.Info("mail (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTMLBody)),
		zap.Int("text_bytes", len(msg.TextBody)),
	)
	return nil
}
