package hcloud

import (
	"errors"
	"slices"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// retryableCodes mark requests that fail while another action holds the
// resource, or that hit the rate limit.
var retryableCodes = []hcloud.ErrorCode{
	hcloud.ErrorCodeLocked,
	hcloud.ErrorCodeConflict,
	hcloud.ErrorCodeResourceLocked,
	hcloud.ErrorCodeResourceUnavailable,
	hcloud.ErrorCodeRateLimitExceeded,
}

// errorCode extracts the code of an hcloud API error, or "".
func errorCode(err error) hcloud.ErrorCode {
	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errorCode(err) == hcloud.ErrorCodeNotFound
}

// isRetryable reports locked resources and rate limiting.
func isRetryable(err error) bool {
	code := errorCode(err)
	return code != "" && slices.Contains(retryableCodes, code)
}
