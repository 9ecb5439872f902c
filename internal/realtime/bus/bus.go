package bus

import (
	"context"

	"github.com/yungbote/gradebridge-backend/internal/realtime"
)

// Bus carries evaluation and guideline events between API replicas and their SSE hubs.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// Pinger is implemented by buses backed by a remote broker.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Remote reports the broker probe for b, if b has one. The in-process bus has none.
func Remote(b Bus) (Pinger, bool) {
	if b == nil {
		return nil, false
	}
	p, ok := b.(Pinger)
	return p, ok
}
