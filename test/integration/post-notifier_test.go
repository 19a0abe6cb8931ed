//go:build integration

package integration

import (
	"fmt"
	"testing"
	"time"
)

func TestPostCreatedTriggersBroadcast(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.APIHealthURL, 60*time.Second)
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()

	endpoint := fmt.Sprintf("https://push.invalid/it-post/%d", time.Now().UnixNano())
	HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/subscribe", map[string]any{
		"endpoint": endpoint,
		"keys":     map[string]string{"p256dh": "it-p256dh", "auth": "it-auth"},
	}, map[string]string{"X-User-ID": "2"}, 201)
	defer HTTPDoJSON(t, "POST", cfg.APIBaseURL+"/unsubscribe", map[string]string{"endpoint": endpoint}, nil, 200)

	before := CountBroadcasts(t, db, "post.created")

	postID := fmt.Sprintf("it-%d", time.Now().UnixNano())
	PublishJSON(t, cfg.KafkaBootstrap, cfg.PostTopic, []byte(postID), map[string]any{
		"post_id":     postID,
		"author_id":   1,
		"author_name": "Integration",
		"excerpt":     "hello from the integration suite",
		"at":          time.Now().UTC().Format(time.RFC3339),
	})

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if CountBroadcasts(t, db, "post.created") > before {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("post.created event did not produce a broadcast audit row")
}
