package consumer

import (
	"context"
)

// MessageConsumer receives conversion and purge requests from a
// message broker and feeds them to the conversions service.
type MessageConsumer interface {
	Start(ctx context.Context) error

	Stop()
}
