package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, recipient string, taskID string, fileName string, errorMsg string) error
}
