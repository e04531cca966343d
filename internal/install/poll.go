package install

import (
	"context"

	"github.com/zuohuadong/outline-server/internal/attributes"
)

const strategyDirectPoll = "direct-poll"

// PollSource returns the live attribute set of one instance on every call.
type PollSource interface {
	FetchAttributes(ctx context.Context) (attributes.Snapshot, error)
}

type fetchResult struct {
	snapshot attributes.Snapshot
	err      error
}

// NewPollMonitor starts a monitor that waits for creation, then fetches a
// fresh snapshot from source on every poll interval.
//
// Fetch errors are logged and polling continues on the same interval. There
// is no install timeout for this strategy; it ends on success, on an
// installer error, or on deletion.
func NewPollMonitor(id string, creation *Creation, source PollSource, opts ...Option) *Monitor {
	m := newMonitor(id, strategyDirectPoll, GCPProfile, opts)
	go m.runPoll(creation, source)
	return m
}

func (m *Monitor) runPoll(creation *Creation, source PollSource) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	select {
	case <-m.deleted:
		return
	case <-m.stop:
		return
	case <-creation.Done():
	}
	if err := creation.Err(); err != nil {
		// Creation failures are not caused by a deletion, so they are
		// committed even while one is in progress.
		m.commitFailure(creationFailure(err))
		return
	}
	m.transition(StateCreated)

	timer := m.opts.clock.NewTimer(m.opts.pollInterval)
	defer timer.Stop()

	results := make(chan fetchResult, 1)
	for {
		select {
		case <-m.deleted:
			return
		case <-m.stop:
			return
		case <-timer.Chan():
		}

		go func() {
			snapshot, err := source.FetchAttributes(ctx)
			results <- fetchResult{snapshot: snapshot, err: err}
		}()

		var res fetchResult
		select {
		case <-m.deleted:
			return
		case <-m.stop:
			return
		case res = <-results:
		}

		if res.err != nil {
			recordFetchFailureMetric(m.Provider(), m.strategy)
			m.opts.log.V(1).Info("Guest attribute fetch failed, retrying", "server", m.id, "error", res.err.Error())
		} else if m.evaluatePoll(res.snapshot) {
			return
		}
		timer.Reset(m.opts.pollInterval)
	}
}

// evaluatePoll applies one snapshot and reports whether polling should stop.
// A single snapshot may produce two transitions (booted, then success or
// error); each is delivered to the listener.
func (m *Monitor) evaluatePoll(snapshot attributes.Snapshot) bool {
	if m.isDeleted() {
		return true
	}
	if m.isDeleting() {
		return false
	}

	if !snapshot.IsEmpty() {
		m.transition(StateBooted)
	}

	endpoint, hasEndpoint := snapshot.ManagementEndpoint("")
	fingerprint, hasFingerprint := snapshot.Fingerprint()
	if hasEndpoint && hasFingerprint {
		m.succeed(endpoint, fingerprint)
		return true
	}
	if message, ok := snapshot.InstallError(); ok {
		m.fail(installerFailure(message))
		return m.CurrentState().Terminal()
	}
	return false
}
