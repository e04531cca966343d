package install

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"

	"github.com/zuohuadong/outline-server/internal/attributes"
)

const strategyCachedRefresh = "cached-refresh"

// StatusActive is the normalized coarse status of a running instance.
const StatusActive = "active"

// Observation is what one network refresh learns about an instance.
type Observation struct {
	Attributes attributes.Snapshot
	// Status is the coarse instance status, StatusActive once running.
	Status string
	// Address is the public address, used to synthesize legacy endpoints.
	Address string
}

// RefreshSource fetches a new observation of one instance.
type RefreshSource interface {
	Refresh(ctx context.Context) (Observation, error)
}

type refreshResult struct {
	observation Observation
	err         error
}

// NewRefreshMonitor starts a monitor that keeps a cached observation of the
// instance. A fast check timer evaluates only the cache and never touches the
// network; a slower timer replaces the cache from source.
//
// A failed refresh is not retried: it ends installation with an error
// matching both ErrInstallFailed and ErrRefreshFailed. Installation also
// fails once the timeout, measured from construction, has elapsed.
func NewRefreshMonitor(id string, source RefreshSource, opts ...Option) *Monitor {
	m := newMonitor(id, strategyCachedRefresh, DigitalOceanProfile, opts)
	go m.runRefresh(source)
	return m
}

func (m *Monitor) runRefresh(source RefreshSource) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	check := m.opts.clock.NewTimer(m.opts.checkInterval)
	defer check.Stop()

	var (
		cache    Observation
		results  = make(chan refreshResult, 1)
		next     clock.Timer
		nextC    <-chan time.Time
		inFlight bool
		// paused is set while a deletion holds back further refreshes.
		paused bool
	)
	defer func() {
		if next != nil {
			next.Stop()
		}
	}()

	refresh := func() {
		inFlight = true
		go func() {
			obs, err := source.Refresh(ctx)
			results <- refreshResult{observation: obs, err: err}
		}()
	}
	refresh()

	for {
		select {
		case <-m.deleted:
			return

		case <-m.stop:
			return

		case <-m.deletingChanged:
			if m.isDeleting() {
				if next != nil {
					next.Stop()
				}
				nextC = nil
				paused = true
			} else if paused {
				paused = false
				if !inFlight {
					refresh()
				}
			}

		case <-check.Chan():
			if m.evaluateCache(cache) {
				return
			}
			check.Reset(m.opts.checkInterval)

		case res := <-results:
			inFlight = false
			if m.isDeleting() {
				m.opts.log.V(1).Info("Dropping refresh result while deleting", "server", m.id)
				paused = true
				continue
			}
			if res.err != nil {
				recordFetchFailureMetric(m.Provider(), m.strategy)
				m.fail(refreshFailure(res.err))
				if m.CurrentState().Terminal() {
					return
				}
				// A deletion started after the check above.
				paused = true
				continue
			}
			cache = res.observation
			m.opts.log.V(1).Info("Refreshed cached attributes", "server", m.id, "status", cache.Status, "attributes", cache.Attributes.Len())
			if next == nil {
				next = m.opts.clock.NewTimer(m.opts.refreshInterval)
			} else {
				next.Reset(m.opts.refreshInterval)
			}
			nextC = next.Chan()

		case <-nextC:
			nextC = nil
			if m.isDeleting() {
				paused = true
				continue
			}
			refresh()
		}
	}
}

// evaluateCache applies the cached observation and reports whether the
// monitor reached a terminal state. It performs no I/O.
func (m *Monitor) evaluateCache(cache Observation) bool {
	if m.isDeleted() {
		return true
	}
	if m.CurrentState().Terminal() {
		return true
	}
	if m.isDeleting() {
		return false
	}

	if message, ok := cache.Attributes.InstallError(); ok {
		m.fail(installerFailure(message))
		return m.CurrentState().Terminal()
	}

	if elapsed := m.opts.clock.Now().Sub(m.started); elapsed >= m.opts.timeout {
		m.fail(fmt.Errorf("%w: %w after %v", ErrInstallFailed, ErrTimeout, m.opts.timeout))
		return m.CurrentState().Terminal()
	}

	endpoint, hasEndpoint := cache.Attributes.ManagementEndpoint(cache.Address)
	fingerprint, hasFingerprint := cache.Attributes.Fingerprint()
	if hasEndpoint && hasFingerprint {
		m.succeed(endpoint, fingerprint)
		return true
	}

	switch {
	case !cache.Attributes.IsEmpty():
		m.transition(StateBooted)
	case cache.Status == StatusActive:
		m.transition(StateCreated)
	}
	return false
}
