package hcloud

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuohuadong/outline-server/internal/config"
)

// testClientMinimal creates a RealClient with test timeouts and no hcloud.Client.
func testClientMinimal() *RealClient {
	return &RealClient{
		timeouts: config.TestTimeouts(),
		log:      logr.Discard(),
	}
}

func TestDeleteOperation_ResourceExists(t *testing.T) {
	t.Parallel()

	fip := &hcloud.FloatingIP{ID: 7}
	deleteCalled := false

	op := &DeleteOperation[*hcloud.FloatingIP]{
		ID:           7,
		ResourceType: "floating IP",
		Get: func(_ context.Context, id int64) (*hcloud.FloatingIP, *hcloud.Response, error) {
			assert.Equal(t, int64(7), id)
			return fip, nil, nil
		},
		Delete: func(_ context.Context, resource *hcloud.FloatingIP) error {
			deleteCalled = true
			assert.Equal(t, fip, resource)
			return nil
		},
	}

	require.NoError(t, op.Execute(context.Background(), testClientMinimal()))
	assert.True(t, deleteCalled, "Delete should have been called")
}

func TestDeleteOperation_ResourceNotFound(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*hcloud.Server]{
		ID:           1,
		ResourceType: "server",
		Get: func(_ context.Context, _ int64) (*hcloud.Server, *hcloud.Response, error) {
			return nil, nil, nil
		},
		Delete: func(_ context.Context, _ *hcloud.Server) error {
			t.Fatal("Delete should not be called for non-existent resource")
			return nil
		},
	}

	require.NoError(t, op.Execute(context.Background(), testClientMinimal()))
}

func TestDeleteOperation_NotFoundOnDelete(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*hcloud.Server]{
		ID:           1,
		ResourceType: "server",
		Get: func(_ context.Context, id int64) (*hcloud.Server, *hcloud.Response, error) {
			return &hcloud.Server{ID: id}, nil, nil
		},
		Delete: func(_ context.Context, _ *hcloud.Server) error {
			return hcloud.Error{Code: hcloud.ErrorCodeNotFound, Message: "gone"}
		},
	}

	require.NoError(t, op.Execute(context.Background(), testClientMinimal()))
}

func TestDeleteOperation_GetError(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*hcloud.FloatingIP]{
		ID:           7,
		ResourceType: "floating IP",
		Get: func(_ context.Context, _ int64) (*hcloud.FloatingIP, *hcloud.Response, error) {
			return nil, nil, errors.New("API error")
		},
		Delete: func(_ context.Context, _ *hcloud.FloatingIP) error {
			t.Fatal("Delete should not be called when Get fails")
			return nil
		},
	}

	err := op.Execute(context.Background(), testClientMinimal())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get floating IP 7")
	assert.Contains(t, err.Error(), "API error")
}

func TestDeleteOperation_DeleteError(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := &DeleteOperation[*hcloud.Server]{
		ID:           1,
		ResourceType: "server",
		Get: func(_ context.Context, id int64) (*hcloud.Server, *hcloud.Response, error) {
			return &hcloud.Server{ID: id}, nil, nil
		},
		Delete: func(_ context.Context, _ *hcloud.Server) error {
			attempts++
			return hcloud.Error{Code: hcloud.ErrorCodeForbidden, Message: "forbidden"}
		},
	}

	err := op.Execute(context.Background(), testClientMinimal())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
	assert.Equal(t, 1, attempts, "non-retryable errors are not retried")
}

func TestDeleteOperation_RetryableErrorCodes(t *testing.T) {
	t.Parallel()

	codes := []struct {
		name string
		code hcloud.ErrorCode
	}{
		{"locked", hcloud.ErrorCodeLocked},
		{"conflict", hcloud.ErrorCodeConflict},
		{"resource_locked", hcloud.ErrorCodeResourceLocked},
		{"resource_unavailable", hcloud.ErrorCodeResourceUnavailable},
		{"rate_limit_exceeded", hcloud.ErrorCodeRateLimitExceeded},
	}

	for _, tc := range codes {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			attempts := 0
			op := &DeleteOperation[*hcloud.Server]{
				ID:           1,
				ResourceType: "server",
				Get: func(_ context.Context, id int64) (*hcloud.Server, *hcloud.Response, error) {
					return &hcloud.Server{ID: id}, nil, nil
				},
				Delete: func(_ context.Context, _ *hcloud.Server) error {
					attempts++
					if attempts < 2 {
						return hcloud.Error{Code: tc.code, Message: "busy"}
					}
					return nil
				},
			}

			require.NoError(t, op.Execute(context.Background(), testClientMinimal()))
			assert.Equal(t, 2, attempts, "error code %s should trigger retry", tc.code)
		})
	}
}

func TestDeleteOperation_LockedResourceExhausted(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*hcloud.Server]{
		ID:           1,
		ResourceType: "server",
		Get: func(_ context.Context, id int64) (*hcloud.Server, *hcloud.Response, error) {
			return &hcloud.Server{ID: id}, nil, nil
		},
		Delete: func(_ context.Context, _ *hcloud.Server) error {
			return hcloud.Error{Code: hcloud.ErrorCodeLocked, Message: "resource is locked"}
		},
	}

	err := op.Execute(context.Background(), testClientMinimal())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation failed after")
}
