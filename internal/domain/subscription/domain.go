package subscription

import "time"

// Keys is the client-side encryption material the push service hands out
// when a browser registers. Both parts are required by the transport.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is one client installation's push endpoint. The endpoint URL
// is the identity of the record: subscribing again with the same endpoint
// refreshes keys, owner and updated_at instead of creating a second row.
type Subscription struct {
	Endpoint  string    `json:"endpoint"`
	Keys      Keys      `json:"keys"`
	OwnerID   *int64    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
