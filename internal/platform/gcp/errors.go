package gcp

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

func apiCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return apiCode(err) == http.StatusNotFound
}

// isRetryable reports rate limiting and server-side errors.
func isRetryable(err error) bool {
	code := apiCode(err)
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
