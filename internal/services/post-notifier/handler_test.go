package postnotifier

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/levigram/pushgate/internal/dispatch"
	"github.com/levigram/pushgate/internal/domain/notification"
	"github.com/levigram/pushgate/internal/domain/subscription"
	kafkax "github.com/levigram/pushgate/internal/repository/kafka"
)

type memRepo struct {
	mu      sync.Mutex
	subs    map[string]*subscription.Subscription
	listErr error
}

func newMemRepo(subs ...*subscription.Subscription) *memRepo {
	r := &memRepo{subs: make(map[string]*subscription.Subscription)}
	for _, s := range subs {
		r.subs[s.Endpoint] = s
	}
	return r
}

func (r *memRepo) Upsert(_ context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s.Endpoint] = s
	return nil
}

func (r *memRepo) Remove(_ context.Context, endpoint string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[endpoint]; !ok {
		return false, nil
	}
	delete(r.subs, endpoint)
	return true, nil
}

func (r *memRepo) List(_ context.Context, excludeOwner *int64) ([]*subscription.Subscription, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*subscription.Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		if excludeOwner != nil && s.OwnerID != nil && *s.OwnerID == *excludeOwner {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []string
}

func (t *recordingTransport) Send(_ context.Context, sub *subscription.Subscription, _ []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sub.Endpoint)
	return http.StatusCreated, nil
}

type memAudit struct {
	mu      sync.Mutex
	records []*notification.Broadcast
}

func (a *memAudit) Create(_ context.Context, b *notification.Broadcast) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, b)
	return nil
}

func (a *memAudit) ListRecent(context.Context, int) ([]*notification.Broadcast, error) {
	return nil, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func ownedSub(endpoint string, owner int64) *subscription.Subscription {
	return &subscription.Subscription{
		Endpoint: endpoint,
		Keys:     subscription.Keys{P256dh: "pk", Auth: "ak"},
		OwnerID:  &owner,
	}
}

func newHandler(repo *memRepo, out notification.Transport, audit *memAudit) *Handler {
	log := zap.NewNop()
	return &Handler{
		Log:   log,
		Disp:  dispatch.New(log, repo, out, dispatch.Config{}),
		Audit: audit,
		Clock: fixedClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func TestHandlePostCreatedSkipsAuthor(t *testing.T) {
	repo := newMemRepo(
		ownedSub("https://push/author", 7),
		ownedSub("https://push/reader", 8),
	)
	out := &recordingTransport{}
	audit := &memAudit{}
	h := newHandler(repo, out, audit)

	err := h.HandlePostCreated(context.Background(), &kafkax.PostCreated{
		PostID:     "p1",
		AuthorID:   7,
		AuthorName: "Levi",
		Excerpt:    "First snow of the season",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://push/reader"}, out.sent)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, "post.created", rec.Trigger)
	assert.Equal(t, "New post from Levi", rec.Title)
	assert.Equal(t, 1, rec.Attempted)
	require.NotNil(t, rec.OwnerSkipped)
	assert.Equal(t, int64(7), *rec.OwnerSkipped)
}

func TestHandlePostCreatedAbsorbsBroadcastError(t *testing.T) {
	repo := newMemRepo(ownedSub("https://push/reader", 8))
	repo.listErr = errors.New("pg down")
	audit := &memAudit{}
	h := newHandler(repo, &recordingTransport{}, audit)

	err := h.HandlePostCreated(context.Background(), &kafkax.PostCreated{
		PostID:   "p1",
		AuthorID: 7,
	})
	assert.NoError(t, err)
	assert.Empty(t, audit.records)
}

func TestHandlePostCreatedDefaults(t *testing.T) {
	repo := newMemRepo(ownedSub("https://push/reader", 8))
	audit := &memAudit{}
	h := newHandler(repo, &recordingTransport{}, audit)

	err := h.HandlePostCreated(context.Background(), &kafkax.PostCreated{
		PostID:   "p2",
		AuthorID: 7,
	})
	require.NoError(t, err)

	require.Len(t, audit.records, 1)
	assert.Equal(t, "New post from Someone", audit.records[0].Title)
	assert.Equal(t, "/home", audit.records[0].URL)
}

func TestExcerptTruncation(t *testing.T) {
	assert.Equal(t, "New post", excerpt("   "))
	assert.Equal(t, "short", excerpt("short"))

	long := strings.Repeat("я", excerptLimit+20)
	got := excerpt(long)
	assert.Equal(t, excerptLimit, len([]rune(got)))
}

func TestAuthorName(t *testing.T) {
	assert.Equal(t, "Someone", authorName(""))
	assert.Equal(t, "Someone", authorName("  "))
	assert.Equal(t, "Levi", authorName("Levi"))
}
