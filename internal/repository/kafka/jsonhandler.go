package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONHandler adapts a typed handler to the raw consumer Handler, decoding
// the message value as JSON.
func JSONHandler[M any](handle func(ctx context.Context, key []byte, msg *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		msg := new(M)
		if err := json.Unmarshal(value, msg); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		return handle(ctx, key, msg)
	}
}
