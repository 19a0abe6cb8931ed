package kafka

import (
	"context"
	"time"

	"github.com/levigram/pushgate/internal/obs/retry"
)

// PostCreated is the event the content subsystem publishes after a post has
// been durably committed. The notifier consumes it off the request path.
type PostCreated struct {
	PostID     string    `json:"post_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Excerpt    string    `json:"excerpt"`
	At         time.Time `json:"at"`
}

// PostEvents is the publishing side of the post.created topic.
type PostEvents struct {
	p   *Producer
	pol retry.Policy
}

func NewPostEvents(p *Producer, pol retry.Policy) *PostEvents {
	return &PostEvents{p: p, pol: pol}
}

func (e *PostEvents) PublishPostCreated(ctx context.Context, ev PostCreated) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return retry.Do(ctx, func() error {
		return e.p.PublishJSON(ctx, []byte(ev.PostID), ev)
	}, e.pol)
}
