package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/levigram/pushgate/internal/obs/retry"
	"github.com/levigram/pushgate/internal/repository/kafka"
)

// post-emitter publishes a single post.created event. Used to smoke-test the
// notifier pipeline without going through the content subsystem.
func main() {
	postID := flag.String("post", "", "post id (required)")
	authorID := flag.Int64("author", 0, "author id (required)")
	authorName := flag.String("name", "", "author display name")
	excerpt := flag.String("excerpt", "", "post excerpt")
	flag.Parse()

	if *postID == "" || *authorID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	brokers := strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := env("KAFKA_TOPIC", "levigram.post.created")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p := kafka.NewProducer(brokers, topic)
	defer p.Close()

	events := kafka.NewPostEvents(p, retry.DefaultKafkaPolicy(nil))
	err := events.PublishPostCreated(ctx, kafka.PostCreated{
		PostID:     *postID,
		AuthorID:   *authorID,
		AuthorName: *authorName,
		Excerpt:    *excerpt,
	})
	if err != nil {
		log.Fatalf("publish post.created: %v", err)
	}
	log.Printf("published post.created post=%s author=%s topic=%s",
		*postID, strconv.FormatInt(*authorID, 10), topic)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
