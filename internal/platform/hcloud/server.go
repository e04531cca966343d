package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/zuohuadong/outline-server/internal/attributes"
	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/pricing"
	"github.com/zuohuadong/outline-server/internal/server"
)

// Server is the provider session for one Hetzner server. It is both the
// refresh source of its monitor and the backend of its handle.
type Server struct {
	client *RealClient
	id     int64
}

// Server returns the session for the server with the given ID.
func (c *RealClient) Server(id int64) *Server {
	return &Server{client: c, id: id}
}

// ManagedServer builds a handle for an existing server. Hetzner creates the
// server synchronously, so the creation signal is already resolved.
func (c *RealClient) ManagedServer(id int64, opts ...install.Option) *server.ManagedServer {
	s := c.Server(id)
	ref := strconv.FormatInt(id, 10)

	monitorOpts := append([]install.Option{
		install.WithProfile(install.HetznerProfile),
		install.WithLogger(c.log),
	}, opts...)
	monitor := install.NewRefreshMonitor(ref, s, monitorOpts...)

	return server.New(ref, monitor, install.Created(), s, server.WithLogger(c.log))
}

func (s *Server) get(ctx context.Context) (*hcloud.Server, error) {
	srv, _, err := s.client.client.Server.GetByID(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %d: %w", s.id, err)
	}
	if srv == nil {
		return nil, fmt.Errorf("server %d not found", s.id)
	}
	return srv, nil
}

// Refresh reads the server labels, status and public address.
func (s *Server) Refresh(ctx context.Context) (install.Observation, error) {
	srv, err := s.get(ctx)
	if err != nil {
		return install.Observation{}, err
	}

	obs := install.Observation{
		Attributes: attributes.DecodeLabels(srv.Labels, s.client.log),
		Status:     normalizeStatus(srv.Status),
		Address:    publicIPv4(srv),
	}
	s.client.log.V(1).Info("Refreshed server labels",
		"server", s.id, "status", string(srv.Status), "attributes", obs.Attributes.Len())
	return obs, nil
}

// normalizeStatus maps the Hetzner server status to the coarse status the
// monitor understands.
func normalizeStatus(status hcloud.ServerStatus) string {
	if status == hcloud.ServerStatusRunning {
		return install.StatusActive
	}
	return string(status)
}

func publicIPv4(srv *hcloud.Server) string {
	if srv.PublicNet.IPv4.IP == nil || srv.PublicNet.IPv4.IsUnspecified() {
		return ""
	}
	return srv.PublicNet.IPv4.IP.String()
}

// Describe reads location, price and traffic allowance of the server.
func (s *Server) Describe(ctx context.Context) (*server.HostInfo, error) {
	srv, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	info := &server.HostInfo{Address: publicIPv4(srv)}
	if srv.Datacenter != nil && srv.Datacenter.Location != nil {
		info.Region = srv.Datacenter.Location.Name
	}

	if srv.ServerType != nil {
		for _, p := range srv.ServerType.Pricings {
			if p.Location == nil || p.Location.Name != info.Region {
				continue
			}
			currency := p.Monthly.Currency
			if currency == "" {
				currency = pricing.CurrencyEUR
			}
			if cost, err := pricing.ParsePrice(p.Monthly.Net, currency); err == nil {
				info.MonthlyCost = cost
			}
			break
		}
	}

	if srv.IncludedTraffic > 0 {
		info.MonthlyTransferBytes = int64(srv.IncludedTraffic) // #nosec G115
	} else {
		info.MonthlyTransferBytes = pricing.HetznerMonthlyTransferBytes(info.Region)
	}
	return info, nil
}

// DeleteAncillary releases the floating IPs assigned to the server.
func (s *Server) DeleteAncillary(ctx context.Context) error {
	srv, _, err := s.client.client.Server.GetByID(ctx, s.id)
	if err != nil {
		return fmt.Errorf("failed to get server %d: %w", s.id, err)
	}
	if srv == nil {
		return nil
	}

	for _, fip := range srv.PublicNet.FloatingIPs {
		s.client.log.Info("Deleting floating IP", "server", s.id, "floatingIP", fip.ID)
		err := (&DeleteOperation[*hcloud.FloatingIP]{
			ID:           fip.ID,
			ResourceType: "floating IP",
			Get:          s.client.client.FloatingIP.GetByID,
			Delete: func(ctx context.Context, fip *hcloud.FloatingIP) error {
				_, err := s.client.client.FloatingIP.Delete(ctx, fip)
				return err
			},
		}).Execute(ctx, s.client)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteInstance deletes the server and waits for the delete action.
func (s *Server) DeleteInstance(ctx context.Context) error {
	return (&DeleteOperation[*hcloud.Server]{
		ID:           s.id,
		ResourceType: "server",
		Get:          s.client.client.Server.GetByID,
		Delete: func(ctx context.Context, srv *hcloud.Server) error {
			result, _, err := s.client.client.Server.DeleteWithResult(ctx, srv)
			if err != nil {
				return err
			}
			if result != nil && result.Action != nil {
				return s.client.client.Action.WaitFor(ctx, result.Action)
			}
			return nil
		},
	}).Execute(ctx, s.client)
}
