package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kennel-exchange/internal/domain/messages"
)

type messageRepo struct {
	mu    sync.RWMutex
	items []messages.Message
}

func NewMessagesRepo() messages.Repository {
	return &messageRepo{}
}

func (r *messageRepo) Create(ctx context.Context, m messages.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, m)
	return nil
}

func (r *messageRepo) Conversation(ctx context.Context, a, b string, before *time.Time, limit int) ([]messages.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]messages.Message, 0)
	for _, m := range r.items {
		pair := (m.SenderUserID == a && m.RecipientUserID == b) ||
			(m.SenderUserID == b && m.RecipientUserID == a)
		if !pair {
			continue
		}
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *messageRepo) Latest(ctx context.Context, userID string) ([]messages.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	last := make(map[string]messages.Message)
	for _, m := range r.items {
		var other string
		switch userID {
		case m.SenderUserID:
			other = m.RecipientUserID
		case m.RecipientUserID:
			other = m.SenderUserID
		default:
			continue
		}
		if cur, ok := last[other]; !ok || !m.CreatedAt.Before(cur.CreatedAt) {
			last[other] = m
		}
	}

	out := make([]messages.Message, 0, len(last))
	for _, m := range last {
		out = append(out, m)
	}
	return out, nil
}

func (r *messageRepo) UnreadCounts(ctx context.Context, userID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, m := range r.items {
		if m.RecipientUserID == userID && m.ReadAt == nil {
			out[m.SenderUserID]++
		}
	}
	return out, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, recipient, sender string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range r.items {
		m := &r.items[i]
		if m.RecipientUserID == recipient && m.SenderUserID == sender && m.ReadAt == nil {
			t := at
			m.ReadAt = &t
			n++
		}
	}
	return n, nil
}
