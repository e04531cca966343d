// Package server provides the provider-independent handle to a managed
// proxy server: its install monitor, its host metadata and its deletion.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/pricing"
)

// ErrDeleted is returned by a handle whose server has been deleted.
var ErrDeleted = errors.New("server has been deleted")

// Backend is the provider session a handle delegates to.
type Backend interface {
	// Describe reads the current host metadata from the provider.
	Describe(ctx context.Context) (*HostInfo, error)
	// DeleteAncillary releases resources allocated next to the instance,
	// such as a reserved static address. It must succeed when there are none.
	DeleteAncillary(ctx context.Context) error
	// DeleteInstance terminates the compute instance. Deleting an instance
	// that no longer exists succeeds.
	DeleteInstance(ctx context.Context) error
}

// HostInfo is the provider-side truth about a host at one point in time.
type HostInfo struct {
	Region string
	// MonthlyCost is zero with an empty currency when unknown.
	MonthlyCost pricing.Money
	// MonthlyTransferBytes is the included outbound transfer per month.
	MonthlyTransferBytes int64
	Address              string
}

// ManagedServer is the handle the console uses for one provisioned server.
type ManagedServer struct {
	id       string
	monitor  *install.Monitor
	creation *install.Creation
	backend  Backend
	log      logr.Logger

	deleteMu sync.Mutex
	mu       sync.Mutex
	deleted  bool
}

// Option configures a ManagedServer.
type Option func(*ManagedServer)

// WithLogger sets the logger used for deletion steps.
func WithLogger(log logr.Logger) Option {
	return func(s *ManagedServer) {
		s.log = log
	}
}

// New wraps a monitor and a provider backend. creation is the provider's
// acknowledgement of the instance and gates deletion.
func New(id string, monitor *install.Monitor, creation *install.Creation, backend Backend, opts ...Option) *ManagedServer {
	s := &ManagedServer{
		id:       id,
		monitor:  monitor,
		creation: creation,
		backend:  backend,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the provider's identifier of the server.
func (s *ManagedServer) ID() string {
	return s.id
}

// Monitor returns the install monitor owned by the handle.
func (s *ManagedServer) Monitor() *install.Monitor {
	return s.monitor
}

// AwaitInstalled blocks until installation succeeds or fails.
func (s *ManagedServer) AwaitInstalled(ctx context.Context) (install.Result, error) {
	return s.monitor.AwaitInstalled(ctx)
}

// SetProgressListener registers the install progress listener.
func (s *ManagedServer) SetProgressListener(l install.ProgressListener) {
	s.monitor.SetProgressListener(l)
}

// CurrentState returns the install state.
func (s *ManagedServer) CurrentState() install.State {
	return s.monitor.CurrentState()
}

// IsInstalled reports whether installation succeeded.
func (s *ManagedServer) IsInstalled() bool {
	return s.monitor.IsInstalled()
}

// ManagementEndpoint returns the management API URL once installed.
func (s *ManagedServer) ManagementEndpoint() (string, bool) {
	res, ok := s.monitor.Result()
	return res.Endpoint, ok
}

// CertificateFingerprint returns the pinned certificate fingerprint once installed.
func (s *ManagedServer) CertificateFingerprint() (string, bool) {
	res, ok := s.monitor.Result()
	return res.Fingerprint, ok
}

// Host reads a fresh descriptor from the provider on every call.
func (s *ManagedServer) Host(ctx context.Context) (*HostDescriptor, error) {
	if s.isDeleted() {
		return nil, ErrDeleted
	}
	info, err := s.backend.Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe server %s: %w", s.id, err)
	}
	return &HostDescriptor{HostInfo: *info, server: s}, nil
}

// Delete removes the server. It first waits for the creation request to be
// acknowledged, then releases ancillary resources, then the instance, and
// finally marks the monitor deleted. A failed creation leaves no instance to
// delete, so only ancillary resources are released.
//
// The monitor is told a deletion is in progress before any provider call,
// so refreshes that see the instance disappear do not fail the install. A
// failed delete resumes monitoring.
func (s *ManagedServer) Delete(ctx context.Context) error {
	s.deleteMu.Lock()
	defer s.deleteMu.Unlock()

	if s.isDeleted() {
		return ErrDeleted
	}

	s.monitor.BeginDelete()
	abort := func(err error) error {
		s.monitor.AbortDelete()
		return err
	}

	creationErr := s.creation.Wait(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return abort(fmt.Errorf("waiting for creation of server %s: %w", s.id, ctxErr))
	}

	s.log.Info("Releasing ancillary resources", "server", s.id)
	if err := s.backend.DeleteAncillary(ctx); err != nil {
		return abort(fmt.Errorf("failed to release ancillary resources of server %s: %w", s.id, err))
	}

	if creationErr == nil {
		s.log.Info("Deleting instance", "server", s.id)
		if err := s.backend.DeleteInstance(ctx); err != nil {
			return abort(fmt.Errorf("failed to delete server %s: %w", s.id, err))
		}
	} else {
		s.log.Info("Skipping instance deletion, creation failed", "server", s.id, "error", creationErr.Error())
	}

	s.monitor.NotifyDeleted()

	s.mu.Lock()
	s.deleted = true
	s.mu.Unlock()
	return nil
}

// Close stops the monitor without deleting the server. Use it for handles
// that are dropped before their install finishes.
func (s *ManagedServer) Close() {
	s.monitor.Stop()
}

func (s *ManagedServer) isDeleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted
}

// HostDescriptor is host metadata bound to the handle it was read from.
// It is derived data: read a new one with ManagedServer.Host rather than
// keeping it around.
type HostDescriptor struct {
	HostInfo
	server *ManagedServer
}

// Delete deletes the server this descriptor was read from.
func (d *HostDescriptor) Delete(ctx context.Context) error {
	return d.server.Delete(ctx)
}
