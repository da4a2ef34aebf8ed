package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const changeChannelPrefix = "wallets:changed:"

// Broadcaster distributes wallet change notifications over Redis pub/sub.
// It carries no payload: a message means "this principal's wallet set
// changed, reload it", which keeps the authoritative data in one place.
type Broadcaster struct {
	cache *redis.Client
}

// NewBroadcaster wraps a Redis client for change notifications.
func NewBroadcaster(cache *redis.Client) *Broadcaster {
	return &Broadcaster{cache: cache}
}

// Publish announces that the principal's wallet set changed.
func (b *Broadcaster) Publish(ctx context.Context, principal string) error {
	return b.cache.Publish(ctx, changeChannelPrefix+principal, "changed").Err()
}

// Watch subscribes to change announcements for the principal. The returned
// channel coalesces bursts: at most one pending notification is buffered,
// since subscribers reload the full set anyway. The feed closes when stop
// is called or ctx is cancelled, whichever comes first.
func (b *Broadcaster) Watch(ctx context.Context, principal string) (<-chan struct{}, func(), error) {
	sub := b.cache.Subscribe(ctx, changeChannelPrefix+principal)

	// Force the SUBSCRIBE round trip so a failed connection surfaces here
	// rather than as a silently dead feed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	out := make(chan struct{}, 1)
	pumpDone := make(chan struct{})
	go func() {
		defer close(out)
		defer close(pumpDone)
		for range sub.Channel() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	// Closing the subscription is idempotent, so ctx cancellation and an
	// explicit stop may both fire.
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-pumpDone:
		}
	}()

	stop := func() { sub.Close() }
	return out, stop, nil
}
