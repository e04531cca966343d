// Package netutil provides network helpers for reaching management endpoints.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

const dialTimeout = 2 * time.Second

// EndpointAddress returns host:port of an http(s) URL, filling in the
// scheme's default port.
func EndpointAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", rawURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", rawURL)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", fmt.Errorf("invalid endpoint %q: unsupported scheme %q", rawURL, u.Scheme)
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// WaitForPort waits for a TCP address to accept connections. It dials
// immediately, then on every interval until timeout.
func WaitForPort(ctx context.Context, address string, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var dialer net.Dialer
	for {
		dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
		conn, err := dialer.DialContext(dialCtx, "tcp", address)
		dialCancel()
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
