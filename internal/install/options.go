package install

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"
)

// Default cadences and limits.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultCheckInterval   = 100 * time.Millisecond
	DefaultRefreshInterval = 3 * time.Second
	DefaultInstallTimeout  = 5 * time.Minute
)

// TrustStore pins the certificate fingerprint of an installed server.
type TrustStore interface {
	Trust(fingerprint string)
}

type options struct {
	log             logr.Logger
	clock           clock.Clock
	trust           TrustStore
	profile         *Profile
	pollInterval    time.Duration
	checkInterval   time.Duration
	refreshInterval time.Duration
	timeout         time.Duration
}

// Option configures a Monitor.
type Option func(*options)

// WithLogger sets the logger used for transitions and fetch failures.
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithTrustStore sets where the fingerprint is pinned on success.
func WithTrustStore(t TrustStore) Option {
	return func(o *options) {
		o.trust = t
	}
}

// WithProfile overrides the provider progress profile.
func WithProfile(p Profile) Option {
	return func(o *options) {
		o.profile = &p
	}
}

// WithPollInterval sets the guest attribute polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithCheckInterval sets how often the cached snapshot is evaluated.
func WithCheckInterval(d time.Duration) Option {
	return func(o *options) {
		o.checkInterval = d
	}
}

// WithRefreshInterval sets the pause between network refreshes of the cache.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) {
		o.refreshInterval = d
	}
}

// WithTimeout sets the install deadline of the cached-refresh strategy,
// measured from monitor construction.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func buildOptions(defaultProfile Profile, opts []Option) options {
	o := options{
		log:             logr.Discard(),
		clock:           clock.WallClock,
		pollInterval:    DefaultPollInterval,
		checkInterval:   DefaultCheckInterval,
		refreshInterval: DefaultRefreshInterval,
		timeout:         DefaultInstallTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.profile == nil {
		o.profile = &defaultProfile
	}
	return o
}
