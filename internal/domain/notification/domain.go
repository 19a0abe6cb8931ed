package notification

import (
	"net/http"
	"time"
)

// Payload defaults. The icon path matches what the Levigram frontend ships.
const (
	DefaultTitle = "Levigram"
	DefaultBody  = "New activity"
	DefaultURL   = "/"
	DefaultIcon  = "/icons/icon-192x192.png"
)

// Payload is the JSON document shown by the service worker. Immutable once
// built; never persisted.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
	Badge string `json:"badge"`
}

// BuildPayload fills every empty field with its default. Overrides apply
// per field, not all-or-nothing.
func BuildPayload(overrides Payload) Payload {
	p := overrides
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Body == "" {
		p.Body = DefaultBody
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}
	if p.Badge == "" {
		p.Badge = DefaultIcon
	}
	return p
}

// Outcome of one send attempt against one subscription.
type Outcome int

const (
	Delivered Outcome = iota
	TransientFailure
	PermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case PermanentFailure:
		return "permanent"
	default:
		return "transient"
	}
}

// Classify maps a transport result to an outcome. 404 and 410 are the push
// service saying the endpoint no longer exists; every other failure is
// assumed recoverable and must not cost the subscription its record.
func Classify(status int, err error) Outcome {
	switch {
	case err != nil:
		return TransientFailure
	case status == http.StatusNotFound || status == http.StatusGone:
		return PermanentFailure
	case status >= 200 && status < 300:
		return Delivered
	default:
		return TransientFailure
	}
}

// Broadcast is the audit record of one completed fan-out.
type Broadcast struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Trigger      string    `json:"trigger"`
	Attempted    int       `json:"attempted"`
	Delivered    int       `json:"delivered"`
	Transient    int       `json:"transient"`
	Pruned       int       `json:"pruned"`
	OwnerSkipped *int64    `json:"owner_skipped,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
