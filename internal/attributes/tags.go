package attributes

import (
	"encoding/hex"
	"strings"

	"github.com/go-logr/logr"
)

// TagNamespace is the prefix of key/value tags, e.g. "kv:apiUrl:6874...".
const TagNamespace = "kv"

const tagSeparator = ":"

// EncodeTag renders a key/value pair as a namespaced tag with a hex value.
func EncodeTag(key, value string) string {
	return TagNamespace + tagSeparator + key + tagSeparator + hex.EncodeToString([]byte(value))
}

// DecodeTags extracts the key/value tags from a provider tag list.
//
// Tags outside the namespace are ignored. A tag whose value is not valid hex
// is logged and skipped; it does not invalidate the rest of the snapshot.
func DecodeTags(tags []string, log logr.Logger) Snapshot {
	prefix := TagNamespace + tagSeparator
	values := make(map[string]string)

	for _, tag := range tags {
		if len(tag) < len(prefix) || !strings.EqualFold(tag[:len(prefix)], prefix) {
			continue
		}
		key, encoded, found := strings.Cut(tag[len(prefix):], tagSeparator)
		if !found || key == "" {
			log.V(1).Info("Skipping malformed key/value tag", "tag", tag)
			continue
		}
		decoded, err := hex.DecodeString(encoded)
		if err != nil {
			log.Error(err, "Skipping tag with undecodable value", "tag", tag)
			continue
		}
		values[key] = string(decoded)
	}

	return NewSnapshot(values)
}
