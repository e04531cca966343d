package gcp

import (
	"context"
	"fmt"
	"path"
	"strings"

	"google.golang.org/api/compute/v1"

	"github.com/zuohuadong/outline-server/internal/attributes"
	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/pricing"
	"github.com/zuohuadong/outline-server/internal/server"
	"github.com/zuohuadong/outline-server/internal/util/retry"
)

// guestQueryPath selects the guest attribute namespace written by the installer.
const guestQueryPath = attributes.GuestNamespace + "/"

// Ref identifies an instance and its optional reserved static address.
type Ref struct {
	Zone          string
	Name          string
	StaticAddress string
}

// ParseRef parses a "zone/name" instance reference.
func ParseRef(s string) (Ref, error) {
	zone, name, ok := strings.Cut(s, "/")
	if !ok || zone == "" || name == "" || strings.Contains(name, "/") {
		return Ref{}, fmt.Errorf("invalid instance reference %q, expected zone/name", s)
	}
	return Ref{Zone: zone, Name: name}, nil
}

// String renders the reference as "zone/name".
func (r Ref) String() string {
	return r.Zone + "/" + r.Name
}

// Instance is the provider session for one instance. It is both the poll
// source of its monitor and the backend of its handle.
type Instance struct {
	client *Client
	ref    Ref
}

// Instance returns the session for ref.
func (c *Client) Instance(ref Ref) *Instance {
	return &Instance{client: c, ref: ref}
}

// ManagedServer builds a handle for an instance. creation is resolved by the
// caller once the insert operation finished; pass install.Created() for an
// instance that already exists.
func (c *Client) ManagedServer(ref Ref, creation *install.Creation, opts ...install.Option) *server.ManagedServer {
	inst := c.Instance(ref)

	monitorOpts := append([]install.Option{
		install.WithProfile(install.GCPProfile),
		install.WithLogger(c.log),
	}, opts...)
	monitor := install.NewPollMonitor(ref.String(), creation, inst, monitorOpts...)

	return server.New(ref.String(), monitor, creation, inst, server.WithLogger(c.log))
}

// FetchAttributes queries the live guest attributes of the instance. The
// namespace does not exist until the installer wrote its first value, so
// not found yields an empty snapshot.
func (i *Instance) FetchAttributes(ctx context.Context) (attributes.Snapshot, error) {
	ga, err := i.client.svc.Instances.GetGuestAttributes(i.client.project, i.ref.Zone, i.ref.Name).
		QueryPath(guestQueryPath).
		Context(ctx).
		Do()
	if IsNotFound(err) {
		return attributes.Snapshot{}, nil
	}
	if err != nil {
		return attributes.Snapshot{}, fmt.Errorf("failed to get guest attributes of %s: %w", i.ref, err)
	}

	var entries []attributes.Entry
	if ga.QueryValue != nil {
		entries = make([]attributes.Entry, 0, len(ga.QueryValue.Items))
		for _, item := range ga.QueryValue.Items {
			entries = append(entries, attributes.Entry{
				Namespace: item.Namespace,
				Key:       item.Key,
				Value:     item.Value,
			})
		}
	}
	snapshot := attributes.FromEntries(entries)
	i.client.log.V(1).Info("Fetched guest attributes", "server", i.ref.String(), "attributes", snapshot.Len())
	return snapshot, nil
}

// Describe reads zone, machine type and public address of the instance.
// The price comes from a static machine type table.
func (i *Instance) Describe(ctx context.Context) (*server.HostInfo, error) {
	inst, err := i.client.svc.Instances.Get(i.client.project, i.ref.Zone, i.ref.Name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get instance %s: %w", i.ref, err)
	}

	info := &server.HostInfo{
		Region:               i.ref.Zone,
		Address:              natIP(inst),
		MonthlyTransferBytes: pricing.GCPMonthlyTransferBytes,
	}
	if cost, ok := pricing.GCPMonthlyCost(path.Base(inst.MachineType), i.ref.Zone); ok {
		info.MonthlyCost = cost
	}
	return info, nil
}

func natIP(inst *compute.Instance) string {
	for _, nic := range inst.NetworkInterfaces {
		for _, ac := range nic.AccessConfigs {
			if ac.NatIP != "" {
				return ac.NatIP
			}
		}
	}
	return ""
}

// DeleteAncillary releases the reserved static address, if there is one.
func (i *Instance) DeleteAncillary(ctx context.Context) error {
	if i.ref.StaticAddress == "" {
		return nil
	}
	region := pricing.RegionOfZone(i.ref.Zone)
	i.client.log.Info("Deleting static address", "server", i.ref.String(), "address", i.ref.StaticAddress)

	err := i.withRetry(ctx, func(ctx context.Context) error {
		op, err := i.client.svc.Addresses.Delete(i.client.project, region, i.ref.StaticAddress).Context(ctx).Do()
		if err != nil {
			return err
		}
		return i.client.waitRegionOperation(ctx, region, op)
	})
	if err != nil {
		return fmt.Errorf("failed to delete static address %s: %w", i.ref.StaticAddress, err)
	}
	return nil
}

// DeleteInstance deletes the instance and waits for the operation. An
// instance that is already gone counts as deleted.
func (i *Instance) DeleteInstance(ctx context.Context) error {
	return i.withRetry(ctx, func(ctx context.Context) error {
		op, err := i.client.svc.Instances.Delete(i.client.project, i.ref.Zone, i.ref.Name).Context(ctx).Do()
		if err != nil {
			return err
		}
		return i.client.waitZoneOperation(ctx, i.ref.Zone, op)
	})
}

// withRetry bounds op by the delete timeout and retries transient API errors.
// Not found counts as success.
func (i *Instance) withRetry(ctx context.Context, op func(context.Context) error) error {
	timeouts := i.client.timeouts
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
		retry.WithLogger(i.client.log))
}
