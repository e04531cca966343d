package install

import (
	"context"
	"sync"
	"time"
)

// ProgressListener receives install progress in [0,1].
type ProgressListener func(progress float64)

// Result is the outcome of a successful installation.
type Result struct {
	Endpoint    string
	Fingerprint string
}

// Monitor drives one server from creation to a terminal install state.
//
// All transitions go through a single guard: ordered states only move
// forward and terminal states never change. That guard is what resolves the
// race between the monitor's own timers and NotifyDeleted, which commits
// synchronously and therefore wins over any transition not yet applied.
// While a deletion is in progress (BeginDelete) failures are not committed,
// so a refresh that sees the instance vanish cannot end the install as an
// error before NotifyDeleted arrives.
type Monitor struct {
	id       string
	strategy string
	opts     options
	started  time.Time

	mu         sync.Mutex
	state      State
	result     Result
	err        error
	listener   ProgressListener
	pending    []float64
	delivering bool
	deleting   bool

	done            chan struct{}
	deleted         chan struct{}
	closeDeleted    sync.Once
	stop            chan struct{}
	closeStop       sync.Once
	deletingChanged chan struct{}
}

func newMonitor(id, strategy string, defaultProfile Profile, opts []Option) *Monitor {
	o := buildOptions(defaultProfile, opts)
	return &Monitor{
		id:       id,
		strategy: strategy,
		opts:     o,
		started:  o.clock.Now(),
		state:    StateUnknown,
		done:     make(chan struct{}),
		deleted:  make(chan struct{}),
		stop:     make(chan struct{}),

		deletingChanged: make(chan struct{}, 1),
	}
}

// ID returns the identifier of the monitored server.
func (m *Monitor) ID() string {
	return m.id
}

// Provider returns the name of the progress profile in use.
func (m *Monitor) Provider() string {
	return m.opts.profile.Provider
}

// CurrentState returns the latest install state.
func (m *Monitor) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsInstalled reports whether installation completed successfully.
func (m *Monitor) IsInstalled() bool {
	return m.CurrentState() == StateSuccess
}

// Progress returns the progress fraction for the current state.
func (m *Monitor) Progress() float64 {
	return m.opts.profile.Progress(m.CurrentState())
}

// Result returns the endpoint and fingerprint once installed.
func (m *Monitor) Result() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.state == StateSuccess
}

// Done is closed when the monitor reaches a terminal state.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// AwaitInstalled blocks until installation finishes. It returns an error
// matching ErrInstallFailed or ErrDeletedBeforeReady when installation did
// not succeed, or ctx.Err() if ctx ends first. Every call observes the same
// outcome.
func (m *Monitor) AwaitInstalled(ctx context.Context) (Result, error) {
	select {
	case <-m.done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.err
}

// SetProgressListener registers the single progress observer, replacing any
// previous one. The listener is called right away with the current progress
// and then once per transition, in transition order. Notifications still
// queued for a replaced listener are dropped.
func (m *Monitor) SetProgressListener(l ProgressListener) {
	m.mu.Lock()
	m.listener = l
	m.pending = nil
	if l != nil {
		m.pending = append(m.pending, m.opts.profile.Progress(m.state))
	}
	m.mu.Unlock()
	m.deliver()
}

// NotifyDeleted moves the monitor to StateDeleted unless it already reached
// a terminal state, and stops its timers. It is safe to call more than once.
func (m *Monitor) NotifyDeleted() {
	m.mu.Lock()
	changed := m.applyLocked(StateDeleted, ErrDeletedBeforeReady)
	m.mu.Unlock()

	m.closeDeleted.Do(func() { close(m.deleted) })
	if changed {
		m.afterTransition(StateDeleted)
	}
}

// BeginDelete marks a deletion in progress. Until NotifyDeleted or
// AbortDelete is called, no new refresh is started and failures are not
// committed, so deletion wins over errors caused by the instance going away.
func (m *Monitor) BeginDelete() {
	m.setDeleting(true)
}

// AbortDelete ends a deletion that did not complete. Monitoring resumes
// where it was paused.
func (m *Monitor) AbortDelete() {
	m.setDeleting(false)
}

func (m *Monitor) setDeleting(deleting bool) {
	m.mu.Lock()
	m.deleting = deleting
	m.mu.Unlock()

	select {
	case m.deletingChanged <- struct{}{}:
	default:
	}
}

func (m *Monitor) isDeleting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleting
}

// Stop ends the monitor's timers without changing its state. A stopped
// monitor that is not terminal never becomes terminal, so AwaitInstalled
// only returns when its context ends. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.closeStop.Do(func() { close(m.stop) })
}

// transition applies a non-terminal forward move.
func (m *Monitor) transition(next State) bool {
	m.mu.Lock()
	changed := m.applyLocked(next, nil)
	m.mu.Unlock()

	if changed {
		m.afterTransition(next)
	}
	return changed
}

// succeed pins the fingerprint and records the endpoint. The trust store is
// called inside the critical section so that awaiters never see success
// before the fingerprint is pinned.
func (m *Monitor) succeed(endpoint, fingerprint string) bool {
	m.mu.Lock()
	if !m.state.allows(StateSuccess) {
		m.mu.Unlock()
		return false
	}
	if m.opts.trust != nil {
		m.opts.trust.Trust(fingerprint)
	}
	m.result = Result{Endpoint: endpoint, Fingerprint: fingerprint}
	m.applyLocked(StateSuccess, nil)
	m.mu.Unlock()

	m.afterTransition(StateSuccess)
	return true
}

// fail moves to StateError unless a deletion is in progress.
func (m *Monitor) fail(err error) bool {
	return m.failWith(err, false)
}

// commitFailure moves to StateError even while a deletion is in progress.
func (m *Monitor) commitFailure(err error) bool {
	return m.failWith(err, true)
}

func (m *Monitor) failWith(err error, duringDelete bool) bool {
	m.mu.Lock()
	if m.deleting && !duringDelete {
		m.mu.Unlock()
		m.opts.log.V(1).Info("Ignoring failure while deleting", "server", m.id, "error", err.Error())
		return false
	}
	changed := m.applyLocked(StateError, err)
	m.mu.Unlock()

	if changed {
		m.opts.log.Error(err, "Installation failed", "server", m.id, "provider", m.Provider())
		m.afterTransition(StateError)
	}
	return changed
}

// applyLocked performs the guarded state change. m.mu must be held.
func (m *Monitor) applyLocked(next State, err error) bool {
	if !m.state.allows(next) {
		return false
	}
	m.state = next
	if err != nil {
		m.err = err
	}
	if m.listener != nil {
		m.pending = append(m.pending, m.opts.profile.Progress(next))
	}
	if next.Terminal() {
		close(m.done)
	}
	return true
}

func (m *Monitor) afterTransition(next State) {
	progress := m.opts.profile.Progress(next)
	m.opts.log.Info("Install state changed", "server", m.id, "provider", m.Provider(), "state", next.String(), "progress", progress)

	recordTransitionMetric(m.Provider(), next)
	if next.Terminal() {
		recordDurationMetric(m.Provider(), next, m.opts.clock.Now().Sub(m.started).Seconds())
	}
	m.deliver()
}

// deliver drains pending notifications in order. Only one goroutine drains
// at a time; others enqueue and return, so listeners may call back into the
// monitor.
func (m *Monitor) deliver() {
	m.mu.Lock()
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true
	for len(m.pending) > 0 {
		progress := m.pending[0]
		m.pending = m.pending[1:]
		l := m.listener
		m.mu.Unlock()
		if l != nil {
			l(progress)
		}
		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()
}

// isDeleted is checked first on every evaluation path.
func (m *Monitor) isDeleted() bool {
	select {
	case <-m.deleted:
		return true
	default:
		return false
	}
}
