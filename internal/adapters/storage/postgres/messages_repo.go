package postgres

import (
	"context"
	"database/sql"
	"time"

	"kennel-exchange/internal/domain/messages"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

const messageColumns = `id, sender_user_id, recipient_user_id, body, created_at, read_at`

func (r *MessagesRepo) Create(ctx context.Context, m messages.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO direct_messages (`+messageColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		m.ID,
		m.SenderUserID,
		m.RecipientUserID,
		m.Body,
		m.CreatedAt,
		toNullTime(m.ReadAt),
	)
	return err
}

func (r *MessagesRepo) Conversation(ctx context.Context, a, b string, before *time.Time, limit int) ([]messages.Message, error) {
	return r.list(ctx, `
		SELECT `+messageColumns+`
		FROM direct_messages
		WHERE ((sender_user_id = $1 AND recipient_user_id = $2)
		    OR (sender_user_id = $2 AND recipient_user_id = $1))
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, a, b, toNullTime(before), limit)
}

// Latest usa DISTINCT ON por contraparte.
func (r *MessagesRepo) Latest(ctx context.Context, userID string) ([]messages.Message, error) {
	return r.list(ctx, `
		SELECT DISTINCT ON (other) `+messageColumns+`
		FROM (
			SELECT *, CASE WHEN sender_user_id = $1 THEN recipient_user_id ELSE sender_user_id END AS other
			FROM direct_messages
			WHERE sender_user_id = $1 OR recipient_user_id = $1
		) t
		ORDER BY other, created_at DESC
	`, userID)
}

func (r *MessagesRepo) UnreadCounts(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sender_user_id, COUNT(*)
		FROM direct_messages
		WHERE recipient_user_id = $1 AND read_at IS NULL
		GROUP BY sender_user_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var sender string
		var n int
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, err
		}
		out[sender] = n
	}
	return out, rows.Err()
}

func (r *MessagesRepo) MarkRead(ctx context.Context, recipient, sender string, at time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE direct_messages
		SET read_at = $3
		WHERE recipient_user_id = $1 AND sender_user_id = $2 AND read_at IS NULL
	`, recipient, sender, at)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *MessagesRepo) list(ctx context.Context, q string, args ...any) ([]messages.Message, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]messages.Message, 0)
	for rows.Next() {
		var m messages.Message
		var readAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.SenderUserID, &m.RecipientUserID, &m.Body, &m.CreatedAt, &readAt); err != nil {
			return nil, err
		}
		m.ReadAt = fromNullTime(readAt)
		out = append(out, m)
	}
	return out, rows.Err()
}
