package messages

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m Message) error
	// Conversation devuelve ambos sentidos entre a y b, más recientes primero.
	// before nil = desde el último.
	Conversation(ctx context.Context, a, b string, before *time.Time, limit int) ([]Message, error)
	// Latest devuelve el último mensaje por contraparte de userID.
	Latest(ctx context.Context, userID string) ([]Message, error)
	// UnreadCounts cuenta no leídos recibidos por userID, agrupados por remitente.
	UnreadCounts(ctx context.Context, userID string) (map[string]int, error)
	// MarkRead marca como leídos los mensajes de sender a recipient.
	MarkRead(ctx context.Context, recipient, sender string, at time.Time) (int, error)
}
