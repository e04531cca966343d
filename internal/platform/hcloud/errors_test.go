package hcloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("something went wrong"), false},
		{"locked", hcloud.Error{Code: hcloud.ErrorCodeLocked, Message: "resource is locked"}, true},
		{"conflict", hcloud.Error{Code: hcloud.ErrorCodeConflict}, true},
		{"resource unavailable", hcloud.Error{Code: hcloud.ErrorCodeResourceUnavailable}, true},
		{"rate limited", hcloud.Error{Code: hcloud.ErrorCodeRateLimitExceeded}, true},
		{"not found", hcloud.Error{Code: hcloud.ErrorCodeNotFound}, false},
		{"forbidden", hcloud.Error{Code: hcloud.ErrorCodeForbidden}, false},
		{"wrapped locked error", fmt.Errorf("delete: %w", hcloud.Error{Code: hcloud.ErrorCodeLocked}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryable(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeNotFound}))
	assert.True(t, IsNotFound(fmt.Errorf("get server: %w", hcloud.Error{Code: hcloud.ErrorCodeNotFound})))
	assert.False(t, IsNotFound(hcloud.Error{Code: hcloud.ErrorCodeLocked}))
	assert.False(t, IsNotFound(errors.New("not found")), "only API errors are classified")
	assert.False(t, IsNotFound(nil))
}
