package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/levigram/pushgate/internal/domain/notification"
	"github.com/levigram/pushgate/internal/domain/subscription"
	"github.com/levigram/pushgate/internal/obs"
)

var (
	mBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_broadcasts_total", Help: "Broadcast fan-outs started.",
	})
	mSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_sends_total", Help: "Send attempts by outcome.",
	}, []string{"outcome"})
	mPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_subscriptions_pruned_total", Help: "Subscriptions removed after a permanent delivery failure.",
	})
	mBroadcastDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "push_broadcast_duration_seconds",
		Help:    "Wall time of one broadcast, sends plus prune pass.",
		Buckets: prometheus.DefBuckets,
	})
)

type Config struct {
	MaxInFlight int
	SendTimeout time.Duration
}

// Dispatcher fans one payload out to every live subscription. Sends are
// mutually independent: one slow or failing endpoint never blocks or cancels
// the others, and every outcome is collected before anything is pruned.
type Dispatcher struct {
	log  *zap.Logger
	subs subscription.Repo
	out  notification.Transport

	maxInFlight int
	sendTimeout time.Duration
}

type Report struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Transient int `json:"transient"`
	Pruned    int `json:"pruned"`
}

func New(log *zap.Logger, subs subscription.Repo, out notification.Transport, cfg Config) *Dispatcher {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 16
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		log:         log.With(zap.String("component", "dispatch")),
		subs:        subs,
		out:         out,
		maxInFlight: cfg.MaxInFlight,
		sendTimeout: cfg.SendTimeout,
	}
}

// Broadcast delivers payload to every subscription except excludeOwner's.
// Only a store read failure is an error; per-recipient failures are absorbed
// into the report.
func (d *Dispatcher) Broadcast(ctx context.Context, p notification.Payload, excludeOwner *int64) (Report, error) {
	targets, err := d.subs.List(ctx, excludeOwner)
	if err != nil {
		return Report{}, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(targets) == 0 {
		return Report{}, nil
	}

	body, err := json.Marshal(notification.BuildPayload(p))
	if err != nil {
		return Report{}, fmt.Errorf("marshal payload: %w", err)
	}

	tr := otel.Tracer("push.dispatch")
	ctx, span := tr.Start(ctx, "push.broadcast")
	span.SetAttributes(attribute.Int("push.targets", len(targets)))
	defer span.End()

	log := obs.WithTrace(ctx, d.log).With(
		zap.String("run", uuid.NewString()),
		zap.Int("targets", len(targets)),
	)

	start := time.Now()
	mBroadcasts.Inc()

	outcomes := make([]notification.Outcome, len(targets))
	sem := make(chan struct{}, d.maxInFlight)
	var wg sync.WaitGroup
	for i, sub := range targets {
		wg.Add(1)
		go func(i int, sub *subscription.Subscription) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()

			status, serr := d.out.Send(sctx, sub, body)
			outcomes[i] = notification.Classify(status, serr)
			switch outcomes[i] {
			case notification.PermanentFailure:
				log.Debug("endpoint gone", zap.String("endpoint", sub.Endpoint), zap.Int("status", status))
			case notification.TransientFailure:
				log.Warn("send failed", zap.String("endpoint", sub.Endpoint), zap.Int("status", status), zap.Error(serr))
			}
		}(i, sub)
	}
	wg.Wait()

	rep := Report{Attempted: len(targets)}
	var gone []string
	for i, oc := range outcomes {
		mSends.WithLabelValues(oc.String()).Inc()
		switch oc {
		case notification.Delivered:
			rep.Delivered++
		case notification.TransientFailure:
			rep.Transient++
		case notification.PermanentFailure:
			gone = append(gone, targets[i].Endpoint)
		}
	}

	// Prune pass runs strictly after every send has been classified.
	if len(gone) > 0 {
		var pwg sync.WaitGroup
		var pruned atomic.Int64
		for _, ep := range gone {
			pwg.Add(1)
			go func(ep string) {
				defer pwg.Done()
				removed, rerr := d.subs.Remove(ctx, ep)
				if rerr != nil {
					log.Warn("prune failed", zap.String("endpoint", ep), zap.Error(rerr))
					return
				}
				if removed {
					pruned.Add(1)
				}
			}(ep)
		}
		pwg.Wait()
		rep.Pruned = int(pruned.Load())
		mPruned.Add(float64(rep.Pruned))
	}

	mBroadcastDur.Observe(time.Since(start).Seconds())
	log.Info("broadcast finished",
		zap.Int("attempted", rep.Attempted),
		zap.Int("delivered", rep.Delivered),
		zap.Int("transient", rep.Transient),
		zap.Int("pruned", rep.Pruned),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}
