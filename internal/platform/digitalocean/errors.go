package digitalocean

import (
	"errors"
	"net/http"

	"github.com/digitalocean/godo"
)

// statusCode extracts the HTTP status of a godo API error, or 0.
func statusCode(err error) int {
	var errResp *godo.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// isRetryable reports rate limiting, lock conflicts and server-side errors.
func isRetryable(err error) bool {
	code := statusCode(err)
	return code == http.StatusTooManyRequests ||
		code == http.StatusConflict ||
		code == http.StatusUnprocessableEntity ||
		code >= http.StatusInternalServerError
}
