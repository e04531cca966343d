package digitalocean

import (
	"context"
	"fmt"
	"strconv"

	"github.com/digitalocean/godo"

	"github.com/zuohuadong/outline-server/internal/attributes"
	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/pricing"
	"github.com/zuohuadong/outline-server/internal/server"
	"github.com/zuohuadong/outline-server/internal/util/retry"
)

// Droplet is the provider session for one droplet. It is both the refresh
// source of its monitor and the backend of its handle.
type Droplet struct {
	client *Client
	id     int
}

// Droplet returns the session for the droplet with the given ID.
func (c *Client) Droplet(id int) *Droplet {
	return &Droplet{client: c, id: id}
}

// ManagedServer builds a handle for a droplet. creation is resolved by the
// caller once the create request returned; pass install.Created() for a
// droplet that already exists.
func (c *Client) ManagedServer(id int, creation *install.Creation, opts ...install.Option) *server.ManagedServer {
	d := c.Droplet(id)
	ref := strconv.Itoa(id)

	monitorOpts := append([]install.Option{
		install.WithProfile(install.DigitalOceanProfile),
		install.WithLogger(c.log),
	}, opts...)
	monitor := install.NewRefreshMonitor(ref, d, monitorOpts...)

	return server.New(ref, monitor, creation, d, server.WithLogger(c.log))
}

func (d *Droplet) get(ctx context.Context) (*godo.Droplet, error) {
	droplet, _, err := d.client.godo.Droplets.Get(ctx, d.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get droplet %d: %w", d.id, err)
	}
	return droplet, nil
}

// Refresh reads the droplet tags, status and public address.
func (d *Droplet) Refresh(ctx context.Context) (install.Observation, error) {
	droplet, err := d.get(ctx)
	if err != nil {
		return install.Observation{}, err
	}

	address, _ := droplet.PublicIPv4()
	obs := install.Observation{
		Attributes: attributes.DecodeTags(droplet.Tags, d.client.log),
		Status:     droplet.Status,
		Address:    address,
	}
	d.client.log.V(1).Info("Refreshed droplet tags",
		"server", d.id, "status", droplet.Status, "attributes", obs.Attributes.Len())
	return obs, nil
}

// Describe reads region, size price and transfer allowance of the droplet.
func (d *Droplet) Describe(ctx context.Context) (*server.HostInfo, error) {
	droplet, err := d.get(ctx)
	if err != nil {
		return nil, err
	}

	info := &server.HostInfo{}
	info.Address, _ = droplet.PublicIPv4()
	if droplet.Region != nil {
		info.Region = droplet.Region.Slug
	}
	if droplet.Size != nil {
		info.MonthlyCost = pricing.USD(droplet.Size.PriceMonthly)
		info.MonthlyTransferBytes = int64(droplet.Size.Transfer * float64(pricing.TiB))
	}
	return info, nil
}

// DeleteAncillary releases the reserved IPs assigned to the droplet.
func (d *Droplet) DeleteAncillary(ctx context.Context) error {
	ips, err := d.reservedIPs(ctx)
	if err != nil {
		return err
	}
	for _, ip := range ips {
		d.client.log.Info("Deleting reserved IP", "server", d.id, "ip", ip)
		err := d.withRetry(ctx, func(ctx context.Context) error {
			_, err := d.client.godo.ReservedIPs.Delete(ctx, ip)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to delete reserved IP %s: %w", ip, err)
		}
	}
	return nil
}

// reservedIPs lists the reserved IPs currently assigned to the droplet.
func (d *Droplet) reservedIPs(ctx context.Context) ([]string, error) {
	var ips []string
	opt := &godo.ListOptions{Page: 1, PerPage: 200}
	for {
		page, resp, err := d.client.godo.ReservedIPs.List(ctx, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to list reserved IPs: %w", err)
		}
		for _, rip := range page {
			if rip.Droplet != nil && rip.Droplet.ID == d.id {
				ips = append(ips, rip.IP)
			}
		}
		if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
			return ips, nil
		}
		opt.Page++
	}
}

// DeleteInstance deletes the droplet. A droplet that is already gone counts
// as deleted.
func (d *Droplet) DeleteInstance(ctx context.Context) error {
	return d.withRetry(ctx, func(ctx context.Context) error {
		_, err := d.client.godo.Droplets.Delete(ctx, d.id)
		return err
	})
}

// withRetry bounds op by the delete timeout and retries transient API errors.
// Not found counts as success.
func (d *Droplet) withRetry(ctx context.Context, op func(context.Context) error) error {
	timeouts := d.client.timeouts
	ctx, cancel := context.WithTimeout(ctx, timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		err := op(ctx)
		switch {
		case err == nil, IsNotFound(err):
			return nil
		case isRetryable(err):
			return err
		default:
			return retry.Fatal(err)
		}
	},
		retry.WithMaxRetries(timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(timeouts.RetryInitialDelay),
		retry.WithLogger(d.client.log))
}
