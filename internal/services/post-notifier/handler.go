package postnotifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/levigram/pushgate/internal/dispatch"
	"github.com/levigram/pushgate/internal/domain/notification"
	"github.com/levigram/pushgate/internal/obs"
	kafkax "github.com/levigram/pushgate/internal/repository/kafka"
)

var (
	mConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_notifier_events_consumed_total", Help: "PostCreated events consumed.",
	})
	mBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_notifier_broadcasts_total", Help: "Broadcasts triggered by post events.",
	})
	mErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_notifier_errors_total", Help: "Broadcast failures absorbed at the notifier boundary.",
	})
)

// Excerpt length matches what the feed preview shows.
const excerptLimit = 90

type Handler struct {
	Log   *zap.Logger
	Disp  *dispatch.Dispatcher
	Audit notification.BroadcastLog
	Clock notification.Clock
}

// HandlePostCreated notifies every subscriber except the post's author. The
// content subsystem already got its response; failures end here, logged,
// never re-raised into the event loop.
func (h *Handler) HandlePostCreated(ctx context.Context, ev *kafkax.PostCreated) error {
	mConsumed.Inc()

	p := notification.BuildPayload(notification.Payload{
		Title: fmt.Sprintf("New post from %s", authorName(ev.AuthorName)),
		Body:  excerpt(ev.Excerpt),
		URL:   "/home",
	})

	author := ev.AuthorID
	rep, err := h.Disp.Broadcast(ctx, p, &author)
	if err != nil {
		mErrors.Inc()
		obs.WithTrace(ctx, h.Log).Error("broadcast failed",
			zap.String("post_id", ev.PostID), zap.Error(err))
		return nil
	}
	mBroadcasts.Inc()

	if h.Audit != nil {
		_ = h.Audit.Create(ctx, &notification.Broadcast{
			Title:        p.Title,
			URL:          p.URL,
			Trigger:      "post.created",
			Attempted:    rep.Attempted,
			Delivered:    rep.Delivered,
			Transient:    rep.Transient,
			Pruned:       rep.Pruned,
			OwnerSkipped: &author,
			CreatedAt:    h.Clock.Now().UTC(),
		})
	}

	obs.WithTrace(ctx, h.Log).Info("post broadcast done",
		zap.String("post_id", ev.PostID),
		zap.Int64("author_id", ev.AuthorID),
		zap.Int("attempted", rep.Attempted),
		zap.Int("delivered", rep.Delivered),
		zap.Int("pruned", rep.Pruned),
	)
	return nil
}

func authorName(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Someone"
	}
	return s
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "New post"
	}
	r := []rune(s)
	if len(r) > excerptLimit {
		return string(r[:excerptLimit])
	}
	return s
}
