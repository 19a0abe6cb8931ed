package postnotifier

import (
	"context"

	"go.uber.org/zap"

	kafkax "github.com/levigram/pushgate/internal/repository/kafka"
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler
}

func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, ev *kafkax.PostCreated) error {
			if ev.AuthorID <= 0 {
				c.Log.Warn("post-created: invalid author_id",
					zap.String("post_id", ev.PostID), zap.Int64("author_id", ev.AuthorID))
				return nil
			}
			return c.UC.HandlePostCreated(ctx, ev)
		},
	)
	return c.Sub.Consume(ctx, handler)
}
