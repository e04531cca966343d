package attributes

import (
	"sort"
	"strings"
)

// Well-known attribute keys written by the server installer.
const (
	KeyAPIURL       = "apiUrl"
	KeyCertSHA256   = "certSha256"
	KeyInstallError = "install-error"

	// Legacy keys published by older images instead of KeyAPIURL.
	KeyAPIPort   = "apiPort"
	KeyAPIPrefix = "apiPrefix"
)

// Snapshot is an immutable set of attributes observed at one point in time.
// The zero value is an empty snapshot.
type Snapshot struct {
	values map[string]string
}

// NewSnapshot builds a snapshot from a plain map. Keys differing only in case
// collapse to a single entry; the lexically last original key wins so the
// result does not depend on map iteration order.
func NewSnapshot(values map[string]string) Snapshot {
	if len(values) == 0 {
		return Snapshot{}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	normalized := make(map[string]string, len(values))
	for _, k := range keys {
		normalized[strings.ToLower(k)] = values[k]
	}
	return Snapshot{values: normalized}
}

// Get returns the value for key, ignoring case.
func (s Snapshot) Get(key string) (string, bool) {
	v, ok := s.values[strings.ToLower(key)]
	return v, ok
}

// Has reports whether key is present, ignoring case.
func (s Snapshot) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of attributes.
func (s Snapshot) Len() int {
	return len(s.values)
}

// IsEmpty reports whether no attributes have been published yet.
func (s Snapshot) IsEmpty() bool {
	return len(s.values) == 0
}

// Keys returns the lower-cased attribute keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fingerprint returns the published certificate fingerprint.
func (s Snapshot) Fingerprint() (string, bool) {
	v, ok := s.Get(KeyCertSHA256)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// InstallError returns the installer's error message, if it reported one.
func (s Snapshot) InstallError() (string, bool) {
	return s.Get(KeyInstallError)
}
