package resolver

import "context"

// Client orchestrates URL resolutions: registry dispatch, record stream
// consumption, archive dedup, and follow-up queue handling.
type Client interface {
	Resolve(ctx context.Context, rawURL string) error
	ResolveAll(ctx context.Context, urls []string)
	ScheduleWatch(ctx context.Context) error
}
