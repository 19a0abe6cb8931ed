package pushapi

import (
	"context"
	"errors"
	"time"

	"github.com/levigram/pushgate/internal/dispatch"
	"github.com/levigram/pushgate/internal/domain/notification"
	"github.com/levigram/pushgate/internal/domain/subscription"
)

var (
	ErrInvalidSubscription = errors.New("endpoint and both keys are required")
	ErrMissingEndpoint     = errors.New("endpoint required")
	ErrNoSubscribers       = errors.New("no subscriptions")
)

type Usecase struct {
	subs  subscription.Repo
	disp  *dispatch.Dispatcher
	audit notification.BroadcastLog
	clk   func() time.Time
}

func NewUsecase(subs subscription.Repo, disp *dispatch.Dispatcher, audit notification.BroadcastLog, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{subs: subs, disp: disp, audit: audit, clk: clk}
}

// Subscribe registers or refreshes the record keyed by endpoint. Calling it
// twice with the same endpoint leaves one row with the latest keys.
func (u *Usecase) Subscribe(ctx context.Context, s *subscription.Subscription) error {
	if s.Endpoint == "" || s.Keys.P256dh == "" || s.Keys.Auth == "" {
		return ErrInvalidSubscription
	}
	return u.subs.Upsert(ctx, s)
}

// Unsubscribe deletes by endpoint. An endpoint that is already gone is a
// successful no-op.
func (u *Usecase) Unsubscribe(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return ErrMissingEndpoint
	}
	_, err := u.subs.Remove(ctx, endpoint)
	return err
}

// Broadcast fans the payload out to every subscriber. ErrNoSubscribers when
// the registry is empty; the HTTP layer maps it to 404.
func (u *Usecase) Broadcast(ctx context.Context, overrides notification.Payload) (dispatch.Report, error) {
	rep, err := u.disp.Broadcast(ctx, overrides, nil)
	if err != nil {
		return rep, err
	}
	if rep.Attempted == 0 {
		return rep, ErrNoSubscribers
	}

	if u.audit != nil {
		p := notification.BuildPayload(overrides)
		_ = u.audit.Create(ctx, &notification.Broadcast{
			Title:     p.Title,
			URL:       p.URL,
			Trigger:   "api",
			Attempted: rep.Attempted,
			Delivered: rep.Delivered,
			Transient: rep.Transient,
			Pruned:    rep.Pruned,
			CreatedAt: u.clk(),
		})
	}
	return rep, nil
}

// RecentBroadcasts exposes the audit log, newest first.
func (u *Usecase) RecentBroadcasts(ctx context.Context, limit int) ([]*notification.Broadcast, error) {
	if u.audit == nil {
		return nil, nil
	}
	return u.audit.ListRecent(ctx, limit)
}
