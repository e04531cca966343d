package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/zuohuadong/outline-server/internal/util/retry"
)

// DeleteOperation encapsulates deletion logic for any hcloud resource
// looked up by ID. It provides consistent retry, timeout, and error handling
// across resource types.
//
// Usage example:
//
//	err := (&DeleteOperation[*hcloud.FloatingIP]{
//	    ID:           fip.ID,
//	    ResourceType: "floating IP",
//	    Get:          c.client.FloatingIP.GetByID,
//	    Delete: func(ctx context.Context, fip *hcloud.FloatingIP) error {
//	        _, err := c.client.FloatingIP.Delete(ctx, fip)
//	        return err
//	    },
//	}).Execute(ctx, c)
type DeleteOperation[T any] struct {
	ID           int64
	ResourceType string

	// Get retrieves the resource by ID. A nil resource means it is already gone.
	Get func(ctx context.Context, id int64) (T, *hcloud.Response, error)

	// Delete removes the resource and waits for any resulting action.
	Delete func(ctx context.Context, resource T) error
}

// Execute performs the delete operation with retry logic and timeout handling.
// The operation is idempotent - it succeeds if the resource doesn't exist.
// Locked and rate-limited requests are retried with exponential backoff.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		resource, _, err := op.Get(ctx, op.ID)
		if err != nil {
			if errorCode(err) == hcloud.ErrorCodeRateLimitExceeded {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to get %s %d: %w", op.ResourceType, op.ID, err))
		}

		if reflect.ValueOf(resource).IsNil() {
			client.log.V(1).Info("Resource already deleted", "type", op.ResourceType, "id", op.ID)
			return nil
		}

		err = op.Delete(ctx, resource)
		switch {
		case err == nil:
			return nil
		case IsNotFound(err):
			return nil
		case isRetryable(err):
			return err
		default:
			return retry.Fatal(fmt.Errorf("failed to delete %s %d: %w", op.ResourceType, op.ID, err))
		}
	},
		retry.WithMaxRetries(client.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(client.timeouts.RetryInitialDelay),
		retry.WithLogger(client.log))
}
