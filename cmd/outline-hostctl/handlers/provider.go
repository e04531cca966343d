// Package handlers implements the business logic for CLI commands.
//
// Each handler loads provider credentials, builds a server handle per
// instance reference and drives it. Factory variables can be replaced in
// tests.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/zuohuadong/outline-server/internal/config"
	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/platform/digitalocean"
	"github.com/zuohuadong/outline-server/internal/platform/gcp"
	"github.com/zuohuadong/outline-server/internal/platform/hcloud"
	"github.com/zuohuadong/outline-server/internal/server"
)

// Options are the flags shared by all provider commands.
type Options struct {
	ConfigPath string
	Verbosity  int
	// StaticAddress names the reserved address of a GCP instance.
	StaticAddress string
}

// Provider builds server handles for instance references.
type Provider interface {
	// ManagedServer builds a handle whose install monitor starts right away.
	ManagedServer(ref string, opts ...install.Option) (*server.ManagedServer, error)
	// Backend returns the provider session alone, without a monitor.
	Backend(ref string) (server.Backend, error)
}

// Factory function variables - can be replaced in tests.
var (
	loadCredentials = config.LoadFile
	loadTimeouts    = config.LoadTimeouts
	newProvider     = defaultProvider

	stdout io.Writer = os.Stdout
)

// SetLogVerbosity sets the global stdr verbosity. Verbosity 1 enables debug
// output of the monitors and retries. Call it once, before any logger is used.
func SetLogVerbosity(verbosity int) {
	stdr.SetVerbosity(verbosity)
}

func newLogger() logr.Logger {
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

// setup loads credentials and timeouts and builds the provider.
func setup(ctx context.Context, providerName string, opts Options) (Provider, *config.Timeouts, logr.Logger, error) {
	logger := newLogger()

	creds, err := loadCredentials(opts.ConfigPath)
	if err != nil {
		return nil, nil, logger, err
	}
	if err := creds.Validate(providerName); err != nil {
		return nil, nil, logger, err
	}

	timeouts := loadTimeouts()
	p, err := newProvider(ctx, providerName, creds, timeouts, opts, logger)
	if err != nil {
		return nil, nil, logger, fmt.Errorf("failed to create %s client: %w", providerName, err)
	}
	return p, timeouts, logger, nil
}

// monitorOptions maps the configured timeouts to install monitor options.
func monitorOptions(t *config.Timeouts, logger logr.Logger) []install.Option {
	return []install.Option{
		install.WithLogger(logger),
		install.WithPollInterval(t.GuestAttributePoll),
		install.WithCheckInterval(t.TagCacheCheck),
		install.WithRefreshInterval(t.TagRefresh),
		install.WithTimeout(t.Install),
	}
}

func defaultProvider(ctx context.Context, name string, creds *config.Credentials, timeouts *config.Timeouts, opts Options, logger logr.Logger) (Provider, error) {
	switch name {
	case config.ProviderDigitalOcean:
		c, err := digitalocean.NewClient(creds.DigitalOcean.Token,
			digitalocean.WithTimeouts(timeouts),
			digitalocean.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &digitalOceanProvider{client: c}, nil
	case config.ProviderGCP:
		c, err := gcp.NewClient(ctx, creds.GCP.Project,
			gcp.WithCredentialsFile(creds.GCP.CredentialsFile),
			gcp.WithTimeouts(timeouts),
			gcp.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &gcpProvider{client: c, staticAddress: opts.StaticAddress}, nil
	case config.ProviderHetzner:
		c := hcloud.NewRealClient(creds.Hetzner.Token,
			hcloud.WithTimeouts(timeouts),
			hcloud.WithLogger(logger))
		return &hetznerProvider{client: c}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

type digitalOceanProvider struct {
	client *digitalocean.Client
}

func dropletID(ref string) (int, error) {
	id, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid droplet id %q: %w", ref, err)
	}
	return id, nil
}

func (p *digitalOceanProvider) ManagedServer(ref string, opts ...install.Option) (*server.ManagedServer, error) {
	id, err := dropletID(ref)
	if err != nil {
		return nil, err
	}
	return p.client.ManagedServer(id, install.Created(), opts...), nil
}

func (p *digitalOceanProvider) Backend(ref string) (server.Backend, error) {
	id, err := dropletID(ref)
	if err != nil {
		return nil, err
	}
	return p.client.Droplet(id), nil
}

type gcpProvider struct {
	client        *gcp.Client
	staticAddress string
}

func (p *gcpProvider) ref(s string) (gcp.Ref, error) {
	r, err := gcp.ParseRef(s)
	if err != nil {
		return gcp.Ref{}, err
	}
	r.StaticAddress = p.staticAddress
	return r, nil
}

func (p *gcpProvider) ManagedServer(ref string, opts ...install.Option) (*server.ManagedServer, error) {
	r, err := p.ref(ref)
	if err != nil {
		return nil, err
	}
	return p.client.ManagedServer(r, install.Created(), opts...), nil
}

func (p *gcpProvider) Backend(ref string) (server.Backend, error) {
	r, err := p.ref(ref)
	if err != nil {
		return nil, err
	}
	return p.client.Instance(r), nil
}

type hetznerProvider struct {
	client *hcloud.RealClient
}

func hetznerID(ref string) (int64, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid server id %q: %w", ref, err)
	}
	return id, nil
}

func (p *hetznerProvider) ManagedServer(ref string, opts ...install.Option) (*server.ManagedServer, error) {
	id, err := hetznerID(ref)
	if err != nil {
		return nil, err
	}
	return p.client.ManagedServer(id, opts...), nil
}

func (p *hetznerProvider) Backend(ref string) (server.Backend, error) {
	id, err := hetznerID(ref)
	if err != nil {
		return nil, err
	}
	return p.client.Server(id), nil
}
