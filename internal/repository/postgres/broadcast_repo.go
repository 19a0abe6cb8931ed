package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/levigram/pushgate/internal/domain/notification"
)

var _ notification.BroadcastLog = (*BroadcastRepo)(nil)

type BroadcastRepo struct{ db *DB }

func NewBroadcastRepo(db *DB) *BroadcastRepo { return &BroadcastRepo{db: db} }

const (
	qBcastInsert = `
INSERT INTO broadcasts (title, url, trigger_kind, attempted, delivered, transient, pruned, owner_skipped, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
RETURNING id, created_at;
`
	qBcastRecent = `
SELECT id, title, url, trigger_kind, attempted, delivered, transient, pruned, owner_skipped, created_at
FROM broadcasts
ORDER BY created_at DESC
LIMIT $1;
`
)

func (r *BroadcastRepo) Create(ctx context.Context, b *notification.Broadcast) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qBcastInsert,
		b.Title,
		b.URL,
		b.Trigger,
		b.Attempted,
		b.Delivered,
		b.Transient,
		b.Pruned,
		b.OwnerSkipped,
		nullTime(b.CreatedAt),
	).Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("insert broadcast: %w", err)
	}
	return nil
}

func (r *BroadcastRepo) ListRecent(ctx context.Context, limit int) ([]*notification.Broadcast, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qBcastRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query broadcasts: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Broadcast, 0, limit)
	for rows.Next() {
		var b notification.Broadcast
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.Trigger, &b.Attempted, &b.Delivered, &b.Transient, &b.Pruned, &b.OwnerSkipped, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		bc := b
		out = append(out, &bc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
