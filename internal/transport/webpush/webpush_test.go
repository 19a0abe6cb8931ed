package webpush

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/levigram/pushgate/internal/domain/subscription"
)

type capturingClient struct {
	req    *http.Request
	status int
	err    error
}

func (c *capturingClient) Do(req *http.Request) (*http.Response, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func testSubscription(t *testing.T) *subscription.Subscription {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &subscription.Subscription{
		Endpoint: "https://push.example.com/send/abc",
		Keys: subscription.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}
}

func testSender(t *testing.T, client webpush.HTTPClient) *Sender {
	t.Helper()
	privKey, pubKey, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	return New(Config{
		Subscriber: "mailto:admin@levigram.app",
		PublicKey:  pubKey,
		PrivateKey: privKey,
	}).WithLogger(zap.NewNop()).WithHTTPClient(client)
}

func TestSendStatusPassthrough(t *testing.T) {
	client := &capturingClient{status: http.StatusCreated}
	s := testSender(t, client)

	status, err := s.Send(context.Background(), testSubscription(t), []byte(`{"title":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)

	require.NotNil(t, client.req)
	assert.Equal(t, "https://push.example.com/send/abc", client.req.URL.String())
	assert.Equal(t, "300", client.req.Header.Get("TTL"))
	assert.Equal(t, "aes128gcm", client.req.Header.Get("Content-Encoding"))
}

func TestSendGoneStatusIsNotAnError(t *testing.T) {
	client := &capturingClient{status: http.StatusGone}
	s := testSender(t, client)

	status, err := s.Send(context.Background(), testSubscription(t), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusGone, status)
}

func TestSendTransportError(t *testing.T) {
	client := &capturingClient{err: errors.New("dial tcp: connection refused")}
	s := testSender(t, client)

	status, err := s.Send(context.Background(), testSubscription(t), []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, 0, status)
}

func TestTTLOverride(t *testing.T) {
	client := &capturingClient{status: http.StatusCreated}
	privKey, pubKey, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	s := New(Config{
		Subscriber: "mailto:admin@levigram.app",
		PublicKey:  pubKey,
		PrivateKey: privKey,
		TTL:        60,
	}).WithHTTPClient(client)

	_, err = s.Send(context.Background(), testSubscription(t), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "60", client.req.Header.Get("TTL"))
}
