// Package hcloud connects Hetzner Cloud servers to the install monitor.
//
// A Hetzner server publishes its install attributes as server labels. Label
// values are limited to 63 characters, so each hex-encoded value is split
// across numbered labels (see the attributes package). The session refreshes
// the labels through the Hetzner Cloud API and the monitor evaluates the
// cached copy, the same cached-refresh strategy used for DigitalOcean tags.
//
// # Deletion
//
// Floating IPs assigned to the server are released before the server
// itself. Both deletions go through [DeleteOperation], which is idempotent
// and retries locked resources with exponential backoff:
//
//   - OUTLINE_TIMEOUT_DELETE: deletion timeout (default: 5m)
//   - OUTLINE_RETRY_MAX_ATTEMPTS: maximum retry attempts (default: 5)
//   - OUTLINE_RETRY_INITIAL_DELAY: initial retry delay (default: 1s)
//
// # Example Usage
//
//	client := hcloud.NewRealClient(token, hcloud.WithLogger(log))
//	srv := client.ManagedServer(42, install.WithTrustStore(store))
//	res, err := srv.AwaitInstalled(ctx)
package hcloud
