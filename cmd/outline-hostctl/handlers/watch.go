package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/server"
	"github.com/zuohuadong/outline-server/internal/trust"
	"github.com/zuohuadong/outline-server/internal/util/async"
	"github.com/zuohuadong/outline-server/internal/util/netutil"
)

// WatchOptions are the flags of the watch command.
type WatchOptions struct {
	Options
	// MetricsAddr serves Prometheus metrics while watching when set.
	MetricsAddr string
	// Probe calls the management API of each installed server over a
	// connection pinned to its certificate fingerprint.
	Probe bool
}

// Watch follows the installation of one or more servers in parallel and
// prints the management endpoint and certificate fingerprint of each.
func Watch(ctx context.Context, providerName string, refs []string, opts WatchOptions) error {
	p, timeouts, logger, err := setup(ctx, providerName, opts.Options)
	if err != nil {
		return err
	}

	// Every reference is parsed before any monitor starts.
	for _, ref := range refs {
		if _, err := p.Backend(ref); err != nil {
			return err
		}
	}

	if opts.MetricsAddr != "" {
		stop := startMetricsServer(opts.MetricsAddr, logger)
		defer stop()
	}

	store := trust.NewStore()
	printer := newProgressPrinter(stdout, isTerminal())
	monitorOpts := append(monitorOptions(timeouts, logger), install.WithTrustStore(store))

	// Handles are closed on return, which also covers a failure to build a
	// later handle.
	handles := make([]*server.ManagedServer, 0, len(refs))
	defer func() {
		for _, srv := range handles {
			srv.Close()
		}
	}()

	tasks := make([]async.Task, 0, len(refs))
	for _, ref := range refs {
		srv, err := p.ManagedServer(ref, monitorOpts...)
		if err != nil {
			return err
		}
		handles = append(handles, srv)
		srv.SetProgressListener(printer.listener(ref))

		tasks = append(tasks, async.Task{
			Name: ref,
			Func: func(ctx context.Context) error {
				res, err := srv.AwaitInstalled(ctx)
				if err != nil {
					printer.failed(ref, err)
					return err
				}
				printer.installed(ref, res)
				if opts.Probe {
					if err := probe(ctx, store, res.Endpoint); err != nil {
						return fmt.Errorf("management API unreachable: %w", err)
					}
					logger.Info("Management API reachable", "server", ref)
				}
				return nil
			},
		})
	}

	if err := async.RunParallel(ctx, tasks, false); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

const probeTimeout = 30 * time.Second

// probe requests the server info of a management API. Any HTTP response
// proves the TLS handshake accepted the pinned certificate.
func probe(ctx context.Context, store *trust.Store, endpoint string) error {
	address, err := netutil.EndpointAddress(endpoint)
	if err != nil {
		return err
	}
	if err := netutil.WaitForPort(ctx, address, time.Second, probeTimeout); err != nil {
		return err
	}

	client := &http.Client{
		Timeout:   probeTimeout,
		Transport: &http.Transport{TLSClientConfig: store.TLSConfig()},
	}
	target, err := url.JoinPath(endpoint, "server")
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// startMetricsServer serves /metrics until the returned function is called.
func startMetricsServer(addr string, logger logr.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
