// Package install tracks a freshly created server until it has installed
// itself and published its management endpoint and certificate fingerprint.
//
// # States
//
// A Monitor starts in StateUnknown and moves forward through StateCreated and
// StateBooted to StateSuccess, or ends in StateError or StateDeleted. Terminal
// states never change. Observations that would move backwards are discarded.
//
// # Strategies
//
// Two ways of driving the same state machine are provided:
//
//   - NewPollMonitor: waits for the Creation signal, then fetches a live
//     snapshot on every poll interval. Fetch errors are retried indefinitely.
//   - NewRefreshMonitor: evaluates a cached observation on a fast timer and
//     replaces the cache on a slow timer. A failed refresh ends the install,
//     and so does the install timeout.
//
// # Progress
//
// Each state maps to a fixed fraction through a provider Profile. A single
// listener registered with SetProgressListener is called immediately with
// the current value and then once per transition, in order.
//
// # Deletion
//
// NotifyDeleted commits StateDeleted synchronously. Because every transition
// passes the same guard, deletion wins over any failure or success that a
// timer has not yet applied.
package install
