// Package trust pins the certificate fingerprints of installed servers and
// verifies management API connections against them.
package trust

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUntrustedCertificate is returned when a peer presents a certificate
// whose fingerprint is not pinned.
var ErrUntrustedCertificate = errors.New("certificate fingerprint is not trusted")

// Store holds pinned SHA-256 certificate fingerprints. It is safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	pinned map[string]string // raw digest -> fingerprint as given
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{pinned: make(map[string]string)}
}

// Trust pins a fingerprint. Base64 and hex encodings of the SHA-256 digest
// are accepted; pinning the same digest twice is a no-op. Fingerprints that
// decode to neither are recorded verbatim and never match a certificate.
func (s *Store) Trust(fingerprint string) {
	key := digestKey(fingerprint)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pinned[key]; !ok {
		s.pinned[key] = fingerprint
	}
}

// IsTrusted reports whether the fingerprint, in any accepted encoding, is pinned.
func (s *Store) IsTrusted(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pinned[digestKey(fingerprint)]
	return ok
}

// Fingerprints returns the pinned fingerprints as they were given, sorted.
func (s *Store) Fingerprints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pinned))
	for _, fp := range s.pinned {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out
}

// VerifyPeerCertificate accepts the connection when the leaf certificate's
// SHA-256 digest is pinned. It has the signature of
// tls.Config.VerifyPeerCertificate.
func (s *Store) VerifyPeerCertificate(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("%w: no certificate presented", ErrUntrustedCertificate)
	}
	sum := sha256.Sum256(rawCerts[0])

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.pinned[string(sum[:])]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUntrustedCertificate, base64.StdEncoding.EncodeToString(sum[:]))
}

// TLSConfig returns a client configuration that trusts exactly the pinned
// certificates. Servers use self-signed certificates, so chain verification
// is replaced by the fingerprint check.
func (s *Store) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:            tls.VersionTLS12,
		InsecureSkipVerify:    true, //nolint:gosec // peer verified by pinned fingerprint
		VerifyPeerCertificate: s.VerifyPeerCertificate,
	}
}

// Fingerprint returns the base64 SHA-256 fingerprint of a DER certificate.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// digestKey normalizes a fingerprint to its raw digest when it decodes to
// one, falling back to a prefixed copy of the input.
func digestKey(fingerprint string) string {
	fp := strings.TrimSpace(fingerprint)
	if b, err := hex.DecodeString(strings.ReplaceAll(fp, ":", "")); err == nil && len(b) == sha256.Size {
		return string(b)
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(fp); err == nil && len(b) == sha256.Size {
			return string(b)
		}
	}
	return "raw:" + fp
}
