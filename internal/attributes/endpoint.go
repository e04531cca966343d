package attributes

import (
	"net"
	"strings"
)

// ManagementEndpoint resolves the management API URL from the snapshot.
//
// The primary KeyAPIURL attribute is returned as published. When it is absent,
// the legacy KeyAPIPort (and optional KeyAPIPrefix) attributes are combined
// with address into "https://<address>:<port>/<prefix>/". The synthesized URL
// always ends in a slash. Without a port or an address nothing is resolvable.
func (s Snapshot) ManagementEndpoint(address string) (string, bool) {
	if url, ok := s.Get(KeyAPIURL); ok && url != "" {
		return url, true
	}

	port, ok := s.Get(KeyAPIPort)
	if !ok || port == "" || address == "" {
		return "", false
	}

	url := "https://" + net.JoinHostPort(address, port) + "/"
	if prefix, ok := s.Get(KeyAPIPrefix); ok {
		if prefix = strings.Trim(prefix, "/"); prefix != "" {
			url += prefix
		}
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url, true
}
