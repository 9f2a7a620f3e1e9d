package port

import "context"

// ConversionPublisher enqueues conversion requests for the worker pool.
type ConversionPublisher interface {
	PublishConversion(ctx context.Context, msg []byte) error
}

type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg []byte) error
}

type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}
