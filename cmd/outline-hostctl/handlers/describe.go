package handlers

import (
	"context"
	"fmt"
)

// Describe prints region, address, price and transfer allowance of a server.
// It reads the host from the provider without monitoring the install.
func Describe(ctx context.Context, providerName, ref string, opts Options) error {
	p, _, _, err := setup(ctx, providerName, opts)
	if err != nil {
		return err
	}

	backend, err := p.Backend(ref)
	if err != nil {
		return err
	}
	host, err := backend.Describe(ctx)
	if err != nil {
		return fmt.Errorf("failed to describe server %s: %w", ref, err)
	}
	fmt.Fprint(stdout, renderHost(ref, host, isTerminal()))
	return nil
}
