package postgres

import (
	"context"
	"fmt"

	"github.com/levigram/pushgate/internal/domain/subscription"
)

var _ subscription.Repo = (*SubscriptionRepo)(nil)

type SubscriptionRepo struct {
	db *DB
}

func NewSubscriptionRepo(db *DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

const (
	qSubUpsert = `
INSERT INTO subscriptions (endpoint, p256dh, auth, owner_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (endpoint) DO UPDATE
SET p256dh     = EXCLUDED.p256dh,
    auth       = EXCLUDED.auth,
    owner_id   = EXCLUDED.owner_id,
    updated_at = NOW()
RETURNING endpoint, p256dh, auth, owner_id, created_at, updated_at;
`

	qSubDelete = `DELETE FROM subscriptions WHERE endpoint = $1;`

	// IS DISTINCT FROM keeps ownerless rows in the result when an owner
	// filter is applied.
	qSubList = `
SELECT endpoint, p256dh, auth, owner_id, created_at, updated_at
FROM subscriptions
WHERE $1::bigint IS NULL OR owner_id IS DISTINCT FROM $1;
`
)

func (r *SubscriptionRepo) Upsert(ctx context.Context, s *subscription.Subscription) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.Pool.QueryRow(ctx, qSubUpsert, s.Endpoint, s.Keys.P256dh, s.Keys.Auth, s.OwnerID)
	if err := row.Scan(&s.Endpoint, &s.Keys.P256dh, &s.Keys.Auth, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) Remove(ctx context.Context, endpoint string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qSubDelete, endpoint)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *SubscriptionRepo) List(ctx context.Context, excludeOwner *int64) ([]*subscription.Subscription, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSubList, excludeOwner)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := rows.Scan(&s.Endpoint, &s.Keys.P256dh, &s.Keys.Auth, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
