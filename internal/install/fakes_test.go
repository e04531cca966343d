package install

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	"github.com/zuohuadong/outline-server/internal/attributes"
)

// fakeTrust records every pinned fingerprint.
type fakeTrust struct {
	mu           sync.Mutex
	fingerprints []string
}

func (f *fakeTrust) Trust(fingerprint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fingerprints = append(f.fingerprints, fingerprint)
}

func (f *fakeTrust) pinned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fingerprints...)
}

// pollStep is one scripted FetchAttributes answer.
type pollStep struct {
	snapshot attributes.Snapshot
	err      error
}

// scriptedPollSource replays steps in order and repeats the last one.
type scriptedPollSource struct {
	mu    sync.Mutex
	steps []pollStep
	calls int
}

func (s *scriptedPollSource) FetchAttributes(_ context.Context) (attributes.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.steps[min(s.calls, len(s.steps)-1)]
	s.calls++
	return step.snapshot, step.err
}

func (s *scriptedPollSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// mutableRefreshSource returns whatever observation is currently set.
type mutableRefreshSource struct {
	mu    sync.Mutex
	obs   Observation
	err   error
	block bool
	calls int
}

func (s *mutableRefreshSource) Refresh(ctx context.Context) (Observation, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	obs, err := s.obs, s.err
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return Observation{}, ctx.Err()
	}
	return obs, err
}

func (s *mutableRefreshSource) set(obs Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = obs
}

func (s *mutableRefreshSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *mutableRefreshSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// progressRecorder collects listener calls.
type progressRecorder struct {
	mu     sync.Mutex
	values []float64
}

func (r *progressRecorder) listen(p float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, p)
}

func (r *progressRecorder) snapshot() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.values...)
}

func tags(pairs ...string) attributes.Snapshot {
	values := make(map[string]string)
	for i := 0; i+1 < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return attributes.NewSnapshot(values)
}

func awaitTerminal(t *testing.T, m *Monitor) (Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := m.AwaitInstalled(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "monitor did not reach a terminal state")
	return res, err
}

func waitForState(t *testing.T, m *Monitor, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.CurrentState() == want
	}, 5*time.Second, time.Millisecond, "expected state %s", want)
}

func newTestClock() *testclock.Clock {
	return testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

// advance moves clk forward once exactly waiters timers are armed.
func advance(t *testing.T, clk *testclock.Clock, d time.Duration, waiters int) {
	t.Helper()
	require.NoError(t, clk.WaitAdvance(d, 5*time.Second, waiters))
}

// advanceUntil steps clk until cond holds.
func advanceUntil(t *testing.T, clk *testclock.Clock, step time.Duration, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		clk.Advance(step)
		return cond()
	}, 5*time.Second, 10*time.Millisecond)
}
