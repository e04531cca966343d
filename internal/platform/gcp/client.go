// Package gcp connects Compute Engine instances to the install monitor.
//
// An instance publishes its install attributes as guest attributes under the
// "outline/" namespace. The session queries them directly on every poll.
package gcp

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/option"

	"github.com/zuohuadong/outline-server/internal/config"
)

const userAgent = "outline-hostctl"

// Client is a Compute Engine API session bound to one project.
type Client struct {
	svc      *compute.Service
	project  string
	timeouts *config.Timeouts
	log      logr.Logger

	clientOpts []option.ClientOption
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCredentialsFile authenticates with a service account key file instead
// of application default credentials.
func WithCredentialsFile(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.clientOpts = append(c.clientOpts, option.WithCredentialsFile(path))
		}
	}
}

// WithAPIOptions passes raw options to the compute service (useful for testing).
func WithAPIOptions(opts ...option.ClientOption) ClientOption {
	return func(c *Client) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *Client) {
		c.timeouts = t
	}
}

// WithLogger sets the logger for poll and delete operations.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a compute session for project.
func NewClient(ctx context.Context, project string, opts ...ClientOption) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("gcp project not set")
	}
	c := &Client{
		project:  project,
		timeouts: config.LoadTimeouts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	apiOpts := append([]option.ClientOption{option.WithUserAgent(userAgent)}, c.clientOpts...)
	svc, err := compute.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// Project returns the project the client operates on.
func (c *Client) Project() string {
	return c.project
}
