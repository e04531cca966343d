package handlers

import (
	"context"
	"fmt"
)

// Delete removes a server: ancillary resources first, then the instance.
func Delete(ctx context.Context, providerName, ref string, opts Options) error {
	p, timeouts, logger, err := setup(ctx, providerName, opts)
	if err != nil {
		return err
	}

	srv, err := p.ManagedServer(ref, monitorOptions(timeouts, logger)...)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("Deleting server", "provider", providerName, "server", ref)
	if err := srv.Delete(ctx); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintf(stdout, "Server %s deleted\n", ref)
	return nil
}
