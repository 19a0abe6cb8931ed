package webpush

import (
	"context"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/levigram/pushgate/internal/domain/notification"
	"github.com/levigram/pushgate/internal/domain/subscription"
)

// DefaultTTL tells the push service to drop undelivered messages after five
// minutes instead of queueing them indefinitely for offline clients.
const DefaultTTL = 300

// Config carries the VAPID credentials. Built once at startup and handed to
// New; nothing in this package reads the environment.
type Config struct {
	Subscriber string `mapstructure:"subscriber"`
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
	TTL        int    `mapstructure:"ttl"`
}

type Sender struct {
	cfg    Config
	client webpush.HTTPClient
	log    *zap.Logger
}

var _ notification.Transport = (*Sender)(nil)

func New(cfg Config) *Sender {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Sender{
		cfg: cfg,
		log: zap.L().With(zap.String("component", "webpush.sender")),
	}
}

func (s *Sender) WithLogger(l *zap.Logger) *Sender {
	if l == nil {
		return s
	}
	cp := *s
	cp.log = l.With(zap.String("component", "webpush.sender"))
	return &cp
}

func (s *Sender) WithHTTPClient(c webpush.HTTPClient) *Sender {
	cp := *s
	cp.client = c
	return &cp
}

// Send encrypts the payload for one subscription and posts it to the push
// service. The response status is returned verbatim; classification belongs
// to the dispatcher.
func (s *Sender) Send(ctx context.Context, sub *subscription.Subscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
