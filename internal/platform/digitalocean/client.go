// Package digitalocean connects droplets to the install monitor.
//
// A droplet publishes its install attributes as tags of the form
// kv:<key>:<hex value>. The session refreshes the droplet through the
// DigitalOcean API and the monitor evaluates the cached tags on a fast
// timer.
package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"
	"github.com/go-logr/logr"
	"golang.org/x/oauth2"

	"github.com/zuohuadong/outline-server/internal/config"
)

// Client is a DigitalOcean API session.
type Client struct {
	godo     *godo.Client
	timeouts *config.Timeouts
	log      logr.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithGodoClient sets a custom godo client (useful for testing).
func WithGodoClient(gc *godo.Client) ClientOption {
	return func(c *Client) {
		c.godo = gc
	}
}

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *Client) {
		c.timeouts = t
	}
}

// WithLogger sets the logger for refresh and delete operations.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeouts: config.LoadTimeouts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.godo == nil {
		if token == "" {
			return nil, fmt.Errorf("digitalocean token not set")
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		gc, err := godo.New(oauth2.NewClient(context.Background(), ts), godo.SetUserAgent("outline-hostctl"))
		if err != nil {
			return nil, fmt.Errorf("failed to create godo client: %w", err)
		}
		c.godo = gc
	}
	return c, nil
}

// Godo returns the underlying godo.Client.
func (c *Client) Godo() *godo.Client {
	return c.godo
}
